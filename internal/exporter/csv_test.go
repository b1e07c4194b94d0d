package exporter

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVWriter_Write(t *testing.T) {
	writer := NewCSVWriter()

	tests := []struct {
		name     string
		options  WriteOptions
		validate func(t *testing.T, content []byte)
	}{
		{
			name: "basic write with headers",
			options: WriteOptions{
				Headers: []string{"Name", "Platform", "Year"},
				Records: [][]string{
					{"Wii Sports", "Wii", "2006"},
					{"Tetris", "GB", "1989"},
				},
			},
			validate: func(t *testing.T, content []byte) {
				lines := strings.Split(strings.TrimSpace(string(content)), "\n")
				assert.Len(t, lines, 3) // header + 2 records
				assert.Equal(t, "Name,Platform,Year", lines[0])
				assert.Equal(t, "Wii Sports,Wii,2006", lines[1])
				assert.Equal(t, "Tetris,GB,1989", lines[2])
			},
		},
		{
			name: "write without headers",
			options: WriteOptions{
				Records: [][]string{{"a", "b"}},
			},
			validate: func(t *testing.T, content []byte) {
				assert.Equal(t, "a,b\n", string(content))
			},
		},
		{
			name: "quotes fields with separators",
			options: WriteOptions{
				Headers: []string{"Name"},
				Records: [][]string{{"Rock, Paper \"Scissors\""}},
			},
			validate: func(t *testing.T, content []byte) {
				assert.Equal(t, "Name\n\"Rock, Paper \"\"Scissors\"\"\"\n", string(content))
			},
		},
		{
			name: "empty records",
			options: WriteOptions{
				Headers: []string{"Col1", "Col2"},
				Records: [][]string{},
			},
			validate: func(t *testing.T, content []byte) {
				assert.Equal(t, "Col1,Col2\n", string(content))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, writer.Write(&buf, tt.options))
			tt.validate(t, buf.Bytes())

			encoded, err := writer.Encode(tt.options)
			require.NoError(t, err)
			assert.Equal(t, buf.Bytes(), encoded)
		})
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out", "export.csv")

	require.NoError(t, WriteFile(path, []byte("Name\nA\n")))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Name\nA\n", string(content))
}

func TestWriteFile_Unwritable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	err := WriteFile(filepath.Join(blocker, "export.csv"), []byte("x"))
	assert.Error(t, err)
}
