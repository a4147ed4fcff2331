package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/shishobooks/shoka/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteTable_PlainWhenNotATerminal(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer

	err := writeTable(&buf, []string{"ID", "Title"}, [][]string{{"1", "Yotsuba&!"}, {"2"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "ID\tTitle\n1\tYotsuba&!\n2\n", buf.String())
}

func TestRenderTable(t *testing.T) {
	t.Parallel()

	out := renderTable([]string{"#", "Name"}, [][]string{{"1", "Vol. 1"}, {"10"}}, []columnAlignment{alignRight})
	assert.Contains(t, out, "Vol. 1")
	assert.Contains(t, out, "NAME")
	assert.Empty(t, renderTable(nil, nil, nil))
}

func TestBookRows(t *testing.T) {
	t.Parallel()
	modified := time.Date(2024, 3, 9, 12, 30, 0, 0, time.UTC)

	rows := bookRows([]*models.Book{
		{ID: 7, Number: 1, Name: "Yotsuba_v01.cbz", FileSize: 2048, FileLastModified: modified},
		{ID: 8, Number: 2, Name: "Yotsuba_v02.cbz"},
	})

	assert.Equal(t, [][]string{
		{"1", "7", "Yotsuba_v01.cbz", "2.0 KiB", "2024-03-09 12:30:00"},
		{"2", "8", "Yotsuba_v02.cbz", "0 B", ""},
	}, rows)
}
