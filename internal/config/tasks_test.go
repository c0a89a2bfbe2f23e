package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskSet_EnableForcesPrerequisites(t *testing.T) {
	var ts TaskSet
	require.True(t, ts.Empty())

	require.NoError(t, ts.Enable(TaskReplace))
	assert.Equal(t, []Task{TaskExtract, TaskDownload, TaskReplace}, ts.List())
}

func TestTaskSet_DisableRejectsWhenDependentEnabled(t *testing.T) {
	ts, err := NewTaskSet(TaskReplace)
	require.NoError(t, err)

	err = ts.Disable(TaskExtract)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"download"`)

	require.NoError(t, ts.Disable(TaskReplace))
	require.NoError(t, ts.Disable(TaskDownload))
	require.NoError(t, ts.Disable(TaskExtract))
	assert.True(t, ts.Empty())
}

func TestTaskSet_UnknownTask(t *testing.T) {
	var ts TaskSet
	require.Error(t, ts.Enable("upload"))
	require.Error(t, ts.Disable("upload"))
	_, err := NewTaskSet(TaskExtract, "upload")
	require.Error(t, err)
}

func TestValidateTasks(t *testing.T) {
	tests := []struct {
		name  string
		tasks []Task
		want  []string
	}{
		{"full chain", []Task{TaskExtract, TaskDownload, TaskReplace}, nil},
		{"extract only", []Task{TaskExtract}, nil},
		{"order does not matter", []Task{TaskReplace, TaskExtract, TaskDownload}, nil},
		{"download without extract", []Task{TaskDownload}, []string{`task "download" requires "extract"`}},
		{"replace without download", []Task{TaskExtract, TaskReplace}, []string{`task "replace" requires "download"`}},
		{"unknown", []Task{TaskExtract, "zip"}, []string{`unknown task "zip"`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateTasks(tt.tasks))
		})
	}
}

func TestConfig_TaskSetIgnoresUnknown(t *testing.T) {
	cfg := Default()
	cfg.Tasks = []Task{TaskExtract, "bogus"}
	ts := cfg.TaskSet()
	assert.True(t, ts.Has(TaskExtract))
	assert.False(t, ts.Has(TaskDownload))
}
