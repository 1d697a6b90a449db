//go:build !js

package pipeline

import (
	"github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
)

type seriesParquetRow struct {
	Frame      int64   `parquet:"name=frame, type=INT64"`
	TimeS      float64 `parquet:"name=time_s, type=DOUBLE"`
	Phase      string  `parquet:"name=phase, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Segment    int64   `parquet:"name=segment, type=INT64"`
	Detected   bool    `parquet:"name=detected, type=BOOLEAN"`
	KineticJ   float64 `parquet:"name=kinetic_j, type=DOUBLE"`
	PotentialJ float64 `parquet:"name=potential_j, type=DOUBLE"`
	TotalJ     float64 `parquet:"name=total_j, type=DOUBLE"`
}

func writeSeriesParquet(path string, rows []SeriesRow) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	if err := encodeSeriesParquet(fw, rows); err != nil {
		_ = fw.Close()
		return err
	}
	return fw.Close()
}

func marshalSeriesParquet(rows []SeriesRow) ([]byte, error) {
	fw := buffer.NewBufferFile()
	if err := encodeSeriesParquet(fw, rows); err != nil {
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return append([]byte(nil), fw.Bytes()...), nil
}

func encodeSeriesParquet(fw source.ParquetFile, rows []SeriesRow) error {
	pw, err := writer.NewParquetWriter(fw, new(seriesParquetRow), 4)
	if err != nil {
		return err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, r := range rows {
		row := seriesParquetRow{
			Frame:      int64(r.Frame),
			TimeS:      r.TimeS,
			Phase:      r.Phase,
			Segment:    int64(r.Segment),
			Detected:   r.Detected,
			KineticJ:   r.KineticJ,
			PotentialJ: r.PotentialJ,
			TotalJ:     r.TotalJ,
		}
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			return err
		}
	}
	return pw.WriteStop()
}
