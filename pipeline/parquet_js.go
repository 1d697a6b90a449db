//go:build js

package pipeline

import "errors"

var errParquetUnavailable = errors.New("parquet output is not available in the browser build; use format=csv")

func writeSeriesParquet(string, []SeriesRow) error {
	return errParquetUnavailable
}

func marshalSeriesParquet([]SeriesRow) ([]byte, error) {
	return nil, errParquetUnavailable
}
