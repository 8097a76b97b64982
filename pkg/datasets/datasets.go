// Package datasets loads batch task files for the CLI's batch command.
package datasets

import (
	"context"
	"fmt"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/array"
	"github.com/apache/arrow/go/v13/arrow/memory"
	"github.com/apache/arrow/go/v13/parquet/file"
	"github.com/apache/arrow/go/v13/parquet/pqarrow"

	errs "github.com/XiaoConstantine/promptopt-go/pkg/errors"
)

// Task is one row of a batch dataset.
type Task struct {
	Task    string `json:"task"`
	Context string `json:"context,omitempty"`
}

// LoadTasks reads a parquet file holding one optimization task per row. The
// file must have a string `task` column; a string `context` column is
// optional and defaults to empty.
func LoadTasks(path string) ([]Task, error) {
	reader, err := file.OpenParquetFile(path, false)
	if err != nil {
		return nil, errs.WithFields(
			errs.Wrap(err, errs.DatasetLoadFailed, "failed to open parquet file"),
			errs.Fields{"path": path})
	}
	defer reader.Close()

	arrowReader, err := pqarrow.NewFileReader(reader, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	if err != nil {
		return nil, errs.Wrap(err, errs.DatasetLoadFailed, "failed to create arrow reader")
	}

	schema, err := arrowReader.Schema()
	if err != nil {
		return nil, errs.Wrap(err, errs.DatasetLoadFailed, "failed to read parquet schema")
	}

	taskIndices := schema.FieldIndices("task")
	if len(taskIndices) == 0 {
		return nil, errs.WithFields(
			errs.New(errs.DatasetLoadFailed, `required column "task" not found`),
			errs.Fields{"path": path})
	}

	contextIndex := -1
	if contextIndices := schema.FieldIndices("context"); len(contextIndices) > 0 {
		contextIndex = contextIndices[0]
	}

	table, err := arrowReader.ReadTable(context.Background())
	if err != nil {
		return nil, errs.Wrap(err, errs.DatasetLoadFailed, "failed to read parquet table")
	}
	defer table.Release()

	taskValues, err := stringValues(table.Column(taskIndices[0]), "task")
	if err != nil {
		return nil, err
	}

	var contextValues []string
	if contextIndex >= 0 {
		contextValues, err = stringValues(table.Column(contextIndex), "context")
		if err != nil {
			return nil, err
		}
	}

	tasks := make([]Task, len(taskValues))
	for i, value := range taskValues {
		tasks[i] = Task{Task: value}
		if contextValues != nil {
			tasks[i].Context = contextValues[i]
		}
	}

	return tasks, nil
}

// stringValues flattens a column's chunks into one string slice. Null cells
// become empty strings.
func stringValues(col *arrow.Column, name string) ([]string, error) {
	values := make([]string, 0, col.Data().Len())

	for _, chunk := range col.Data().Chunks() {
		strs, ok := chunk.(*array.String)
		if !ok {
			return nil, errs.New(errs.DatasetLoadFailed,
				fmt.Sprintf("column %q is not a string column", name))
		}
		for i := 0; i < strs.Len(); i++ {
			if strs.IsNull(i) {
				values = append(values, "")
				continue
			}
			values = append(values, strs.Value(i))
		}
	}

	return values, nil
}
