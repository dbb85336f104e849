package mariadb

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitScript_BasicStatements(t *testing.T) {
	script := `
CREATE TABLE users (id INT);
INSERT INTO users VALUES (1);
`
	statements, err := splitScript(strings.NewReader(script))
	require.NoError(t, err)
	require.Len(t, statements, 2)
	assert.Equal(t, "CREATE TABLE users (id INT)", strings.TrimSpace(statements[0]))
	assert.Equal(t, "INSERT INTO users VALUES (1)", strings.TrimSpace(statements[1]))
}

func TestSplitScript_SkipsCommentsAndBlankLines(t *testing.T) {
	script := `
-- schema version 3
# legacy comment style

CREATE TABLE t (id INT);
`
	statements, err := splitScript(strings.NewReader(script))
	require.NoError(t, err)
	require.Len(t, statements, 1)
	assert.NotContains(t, statements[0], "--")
	assert.NotContains(t, statements[0], "#")
}

func TestSplitScript_MultiLineStatement(t *testing.T) {
	script := `
CREATE TABLE accounts (
    id INT PRIMARY KEY,
    balance DECIMAL(10, 2)
);
`
	statements, err := splitScript(strings.NewReader(script))
	require.NoError(t, err)
	require.Len(t, statements, 1)
	assert.Contains(t, statements[0], "balance DECIMAL(10, 2)")
}

func TestSplitScript_DelimiterDirective(t *testing.T) {
	script := `
DELIMITER $$
CREATE PROCEDURE audit()
BEGIN
    INSERT INTO log VALUES (NOW());
END$$
DELIMITER ;
DROP TABLE old_log;
`
	statements, err := splitScript(strings.NewReader(script))
	require.NoError(t, err)
	require.Len(t, statements, 2)
	assert.Contains(t, statements[0], "CREATE PROCEDURE audit()")
	assert.Contains(t, statements[0], "INSERT INTO log VALUES (NOW());", "semicolons inside a procedure body stay intact")
	assert.NotContains(t, statements[0], "$$")
	assert.Equal(t, "DROP TABLE old_log", strings.TrimSpace(statements[1]))
}

func TestSplitScript_IgnoresTrailingFragmentWithoutDelimiter(t *testing.T) {
	script := "CREATE TABLE t (id INT);\nSELECT * FROM t"
	statements, err := splitScript(strings.NewReader(script))
	require.NoError(t, err)
	require.Len(t, statements, 1, "an unterminated trailing fragment is not executed")
}

func TestCredentials_Defaults(t *testing.T) {
	c := NewCredentials("app", "secret", "appdb")
	assert.Equal(t, DefaultHost, c.Host)
	assert.Equal(t, DefaultPort, c.Port)
	assert.Equal(t, DefaultMinPoolSize, c.MinPoolSize)
	assert.Equal(t, DefaultMaxPoolSize, c.MaxPoolSize)
}

func TestCredentials_DSN(t *testing.T) {
	c := Credentials{
		Host:     "db.internal",
		Port:     3307,
		Username: "app",
		Password: "secret",
		Database: "appdb",
	}
	dsn := c.DSN()
	assert.Contains(t, dsn, "app:secret@tcp(db.internal:3307)/appdb")
	assert.Contains(t, dsn, "parseTime=true")
}
