package datasets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/array"
	"github.com/apache/arrow/go/v13/arrow/memory"
	"github.com/apache/arrow/go/v13/parquet"
	"github.com/apache/arrow/go/v13/parquet/pqarrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/XiaoConstantine/promptopt-go/pkg/errors"
)

// writeParquet builds a parquet file from one record per row batch so
// multi-chunk columns are exercised.
func writeParquet(t *testing.T, schema *arrow.Schema, batches ...func(*array.RecordBuilder)) string {
	t.Helper()

	records := make([]arrow.Record, 0, len(batches))
	for _, fill := range batches {
		b := array.NewRecordBuilder(memory.DefaultAllocator, schema)
		fill(b)
		rec := b.NewRecord()
		b.Release()
		records = append(records, rec)
	}

	table := array.NewTableFromRecords(schema, records)
	defer table.Release()
	for _, rec := range records {
		rec.Release()
	}

	path := filepath.Join(t.TempDir(), "tasks.parquet")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, pqarrow.WriteTable(table, f, 1024, parquet.NewWriterProperties(), pqarrow.DefaultWriterProps()))
	// pqarrow.WriteTable closes the sink it is handed, so tolerate the
	// double close while still surfacing any genuine close failure.
	if err := f.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		require.NoError(t, err)
	}

	return path
}

func taskContextSchema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: "task", Type: arrow.BinaryTypes.String},
		{Name: "context", Type: arrow.BinaryTypes.String},
	}, nil)
}

func TestLoadTasksReadsBothColumns(t *testing.T) {
	path := writeParquet(t, taskContextSchema(), func(b *array.RecordBuilder) {
		b.Field(0).(*array.StringBuilder).AppendValues([]string{"summarize the outage", "draft a changelog"}, nil)
		b.Field(1).(*array.StringBuilder).AppendValues([]string{"sev-2 postmortem", ""}, nil)
	})

	tasks, err := LoadTasks(path)

	require.NoError(t, err)
	assert.Equal(t, []Task{
		{Task: "summarize the outage", Context: "sev-2 postmortem"},
		{Task: "draft a changelog"},
	}, tasks)
}

func TestLoadTasksPreservesRowOrderAcrossChunks(t *testing.T) {
	path := writeParquet(t, taskContextSchema(),
		func(b *array.RecordBuilder) {
			b.Field(0).(*array.StringBuilder).AppendValues([]string{"first", "second"}, nil)
			b.Field(1).(*array.StringBuilder).AppendValues([]string{"c1", "c2"}, nil)
		},
		func(b *array.RecordBuilder) {
			b.Field(0).(*array.StringBuilder).AppendValues([]string{"third"}, nil)
			b.Field(1).(*array.StringBuilder).AppendValues([]string{"c3"}, nil)
		},
	)

	tasks, err := LoadTasks(path)

	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, Task{Task: "first", Context: "c1"}, tasks[0])
	assert.Equal(t, Task{Task: "second", Context: "c2"}, tasks[1])
	assert.Equal(t, Task{Task: "third", Context: "c3"}, tasks[2])
}

func TestLoadTasksContextColumnOptional(t *testing.T) {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "task", Type: arrow.BinaryTypes.String},
	}, nil)
	path := writeParquet(t, schema, func(b *array.RecordBuilder) {
		b.Field(0).(*array.StringBuilder).AppendValues([]string{"lone task"}, nil)
	})

	tasks, err := LoadTasks(path)

	require.NoError(t, err)
	assert.Equal(t, []Task{{Task: "lone task"}}, tasks)
}

func TestLoadTasksNullContextBecomesEmpty(t *testing.T) {
	path := writeParquet(t, taskContextSchema(), func(b *array.RecordBuilder) {
		b.Field(0).(*array.StringBuilder).AppendValues([]string{"task with null context"}, nil)
		b.Field(1).(*array.StringBuilder).AppendNull()
	})

	tasks, err := LoadTasks(path)

	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Empty(t, tasks[0].Context)
}

func TestLoadTasksMissingTaskColumn(t *testing.T) {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "question", Type: arrow.BinaryTypes.String},
	}, nil)
	path := writeParquet(t, schema, func(b *array.RecordBuilder) {
		b.Field(0).(*array.StringBuilder).AppendValues([]string{"who?"}, nil)
	})

	tasks, err := LoadTasks(path)

	assert.Nil(t, tasks)
	require.Error(t, err)
	assert.Equal(t, errs.DatasetLoadFailed, errs.Code(err))
	assert.Contains(t, err.Error(), `"task"`)
}

func TestLoadTasksNonStringTaskColumn(t *testing.T) {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "task", Type: arrow.PrimitiveTypes.Int64},
	}, nil)
	path := writeParquet(t, schema, func(b *array.RecordBuilder) {
		b.Field(0).(*array.Int64Builder).AppendValues([]int64{42}, nil)
	})

	tasks, err := LoadTasks(path)

	assert.Nil(t, tasks)
	require.Error(t, err)
	assert.Equal(t, errs.DatasetLoadFailed, errs.Code(err))
	assert.Contains(t, err.Error(), "not a string column")
}

func TestLoadTasksMissingFile(t *testing.T) {
	tasks, err := LoadTasks(filepath.Join(t.TempDir(), "absent.parquet"))

	assert.Nil(t, tasks)
	require.Error(t, err)
	assert.Equal(t, errs.DatasetLoadFailed, errs.Code(err))
}

func TestLoadTasksCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.parquet")
	require.NoError(t, os.WriteFile(path, []byte("this is not parquet"), 0o644))

	tasks, err := LoadTasks(path)

	assert.Nil(t, tasks)
	require.Error(t, err)
	assert.Equal(t, errs.DatasetLoadFailed, errs.Code(err))
}
