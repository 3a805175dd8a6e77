package migration

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileScanner_ScanMigrations(t *testing.T) {
	tests := []struct {
		name          string
		files         map[string]string
		expectedOrder []string
		expectErr     error
	}{
		{
			name: "orders by numeric version",
			files: map[string]string{
				"010_add_indexes.sql":    "CREATE INDEX idx ON users(email);",
				"001_initial_schema.sql": "CREATE TABLE users (id TEXT PRIMARY KEY);",
				"002_add_rooms.sql":      "CREATE TABLE rooms (id TEXT PRIMARY KEY);",
			},
			expectedOrder: []string{"001", "002", "010"},
		},
		{
			name: "ignores non-sql files",
			files: map[string]string{
				"001_initial_schema.sql": "CREATE TABLE users (id TEXT PRIMARY KEY);",
				"README.md":              "# notes",
			},
			expectedOrder: []string{"001"},
		},
		{
			name:          "empty directory",
			files:         map[string]string{".keep": ""},
			expectedOrder: nil,
		},
		{
			name: "invalid filename",
			files: map[string]string{
				"initial.sql": "CREATE TABLE users (id TEXT PRIMARY KEY);",
			},
			expectErr: ErrInvalidMigrationFile,
		},
		{
			name: "duplicate version",
			files: map[string]string{
				"001_users.sql": "CREATE TABLE users (id TEXT PRIMARY KEY);",
				"1_rooms.sql":   "CREATE TABLE rooms (id TEXT PRIMARY KEY);",
			},
			expectErr: ErrDuplicateVersion,
		},
		{
			name: "comment-only file",
			files: map[string]string{
				"001_empty.sql": "-- nothing here\n",
			},
			expectErr: ErrInvalidMigrationFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := fstest.MapFS{}
			for name, content := range tt.files {
				fsys["migrations/"+name] = &fstest.MapFile{Data: []byte(content)}
			}

			got, err := NewFileScanner(fsys, "migrations").ScanMigrations()
			if tt.expectErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.expectErr), "got %v", err)
				return
			}
			require.NoError(t, err)

			var versions []string
			for _, m := range got {
				versions = append(versions, m.Version)
				assert.NotEmpty(t, m.Checksum)
			}
			assert.Equal(t, tt.expectedOrder, versions)
		})
	}
}

func TestFileScanner_Description(t *testing.T) {
	fsys := fstest.MapFS{
		"m/001_initial_schema.sql": {Data: []byte("-- Description: Base tables\nCREATE TABLE a (id TEXT);")},
		"m/002_add_rooms.sql":      {Data: []byte("CREATE TABLE b (id TEXT);")},
	}

	got, err := NewFileScanner(fsys, "m").ScanMigrations()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Base tables", got[0].Description)
	assert.Equal(t, "add rooms", got[1].Description)
}

func TestSplitStatements(t *testing.T) {
	sql := `
-- header
CREATE TABLE a (id TEXT);

-- trailing comment
CREATE INDEX idx_a ON a(id);
`
	got := splitStatements(sql)
	assert.Equal(t, []string{"CREATE TABLE a (id TEXT)", "CREATE INDEX idx_a ON a(id)"}, got)
}
