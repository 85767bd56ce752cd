package evidence

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogAppendAndPersist(t *testing.T) {

	path := filepath.Join(t.TempDir(), "violations", "violations_log.json")

	l, err := NewLog(path)
	require.NoError(t, err)

	require.NoError(t, l.Violation(1, "left_heel", 120, 1))
	require.NoError(t, l.Violation(1, "right_heel", 185, 2))
	require.NoError(t, l.Violation(2, "box_bottom", 190, 1))
	require.NoError(t, l.Eliminated(1, 250, 3))

	assert.Equal(t, 2, l.CountFor(1))
	assert.Equal(t, 1, l.CountFor(2))

	// every append persists, reload the file and check contents
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var records []Record
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 4)

	assert.Equal(t, StatusViolation, records[0].Status)
	assert.Equal(t, "left_heel", records[0].Landmark)
	assert.Equal(t, int64(1), records[0].SubjectID)

	last := records[3]
	assert.Equal(t, StatusOut, last.Status)
	assert.Equal(t, 3, last.Count)
}
