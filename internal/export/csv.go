package export

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shrimpsizemoose/evaluaciones/internal/models"
)

const Filename = "evaluaciones.csv"

var Header = []string{"id", "student_name", "student_id", "course", "date", "score", "comments", "created_at"}

var lineFlattener = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// WriteCSV writes the header and one row per evaluation, in the given order.
// comments is always quoted; other fields only when they need it.
func WriteCSV(w io.Writer, evaluations []models.Evaluation) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString(strings.Join(Header, ",") + "\n"); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, e := range evaluations {
		fields := []string{
			strconv.FormatInt(e.ID, 10),
			field(e.StudentName),
			field(e.StudentID),
			field(e.Course),
			field(e.Date),
			models.FormatScore(e.Score),
			quote(lineFlattener.Replace(e.Comments)),
			e.CreatedAt.UTC().Format(time.RFC3339),
		}
		if _, err := bw.WriteString(strings.Join(fields, ",") + "\n"); err != nil {
			return fmt.Errorf("failed to write csv row %d: %w", e.ID, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

func field(s string) string {
	s = lineFlattener.Replace(s)
	if strings.ContainsAny(s, `,"`) || strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") {
		return quote(s)
	}
	return s
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
