package mariadb

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/stokehq/stoke/pkg/logging"
)

const defaultDelimiter = ";"

// LoadSchemaFile reads a schema script from path and executes it statement
// by statement against one pooled connection.
func (p *Provider) LoadSchemaFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening schema file: %w", err)
	}
	defer f.Close()
	return p.LoadSchema(ctx, f)
}

// LoadSchema splits the script into statements and executes them in order on
// one borrowed connection. Blank lines and `--`/`#` comment lines are
// dropped; DELIMITER directives switch the statement terminator, which
// keeps stored-procedure bodies intact.
func (p *Provider) LoadSchema(ctx context.Context, r io.Reader) error {
	statements, err := splitScript(r)
	if err != nil {
		return fmt.Errorf("reading schema script: %w", err)
	}

	conn, err := p.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	for _, stmt := range statements {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			p.logger.Error("schema statement failed",
				zap.String("statement", logging.SanitizeStatement(stmt)),
				zap.String("error", logging.SanitizeError(err)),
			)
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	p.logger.Info("schema loaded", zap.Int("statements", len(statements)))
	return nil
}

// splitScript performs the line-oriented split: statements end at the
// current delimiter, comments and blank lines are skipped, and a DELIMITER
// directive replaces the terminator for subsequent lines.
func splitScript(r io.Reader) ([]string, error) {
	var statements []string
	var builder strings.Builder
	delimiter := defaultDelimiter

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		if trimmed == "" || strings.HasPrefix(trimmed, "--") || strings.HasPrefix(trimmed, "#") {
			continue
		}

		if next, ok := delimiterDirective(trimmed); ok {
			delimiter = next
			continue
		}

		builder.WriteString(line)
		builder.WriteString("\n")

		if strings.HasSuffix(trimmed, delimiter) {
			stmt := builder.String()
			stmt = stmt[:strings.LastIndex(stmt, delimiter)]
			if strings.TrimSpace(stmt) != "" {
				statements = append(statements, stmt)
			}
			builder.Reset()
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return statements, nil
}

func delimiterDirective(line string) (string, bool) {
	if len(line) < len("DELIMITER") || !strings.EqualFold(line[:len("DELIMITER")], "DELIMITER") {
		return "", false
	}
	next := strings.TrimSpace(line[len("DELIMITER"):])
	if next == "" {
		return "", false
	}
	return next, true
}
