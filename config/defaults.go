package config

const (
	defaultMassKG       = 70.0
	defaultHeightM      = 1.80
	defaultPixelToMeter = 0.01
	defaultOutputDir    = "./pvsim-out"
	defaultOutputFormat = FormatParquet
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
	defaultBatchWorkers = 4
	maxBatchWorkers     = 64
	maxMassKG           = 200.0
)

// Series formats accepted by [output] format.
const (
	FormatParquet = "parquet"
	FormatCSV     = "csv"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Athlete: Athlete{
			MassKG:       defaultMassKG,
			HeightM:      defaultHeightM,
			PixelToMeter: defaultPixelToMeter,
		},
		Output: Output{
			Dir:    defaultOutputDir,
			Format: defaultOutputFormat,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		Batch: Batch{
			Workers: defaultBatchWorkers,
		},
	}
}
