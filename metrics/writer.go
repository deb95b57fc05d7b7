package metrics

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type MoveRecord struct {
	Game string // GameMetric.ID
	MoveMetric
}

type Writer struct {
	baseDir string
}

// NewWriter creates a timestamped report folder under dir.
func NewWriter(dir string) (*Writer, error) {
	timestamp := time.Now().UTC().Format("20060102T150405Z")
	baseDir := filepath.Join(dir, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) write(name string, header []string, rows [][]string) error {
	path := filepath.Join(w.baseDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	return writeCSV(f, name, header, rows)
}

// writeCSV writes and closes f. A file that fails to close was not stored.
func writeCSV(f io.WriteCloser, name string, header []string, rows [][]string) (err error) {
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", name, cerr)
		}
	}()

	writer := csv.NewWriter(f)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", name, err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s rows: %w", name, err)
	}
	return nil
}

func (w *Writer) WriteGameRecords(records []GameMetric) error {
	header := []string{"id", "players", "winner", "fault", "start_time", "end_time", "duration", "moves", "scores"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		scores := make([]string, len(record.Scores))
		for i, s := range record.Scores {
			scores[i] = strconv.FormatFloat(s, 'g', -1, 64)
		}
		rows = append(rows, []string{
			record.ID,
			strings.Join(record.Players, ";"),
			strconv.Itoa(record.Winner),
			record.Fault,
			record.StartTime.Format(time.RFC3339),
			record.EndTime.Format(time.RFC3339),
			record.Duration.String(),
			strconv.Itoa(record.Moves),
			strings.Join(scores, ";"),
		})
	}
	return w.write("game_records.csv", header, rows)
}

func (w *Writer) WriteMoveRecords(records []MoveRecord) error {
	header := []string{"game", "ply", "player", "depth", "duration", "nodes", "leaves", "cache_hits", "cutoffs", "cache_size"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			record.Game,
			strconv.Itoa(record.Ply),
			strconv.Itoa(record.Player),
			strconv.Itoa(record.Depth),
			record.Duration.String(),
			strconv.Itoa(record.Nodes),
			strconv.Itoa(record.Leaves),
			strconv.Itoa(record.CacheHits),
			strconv.Itoa(record.Cutoffs),
			strconv.Itoa(record.CacheSize),
		})
	}
	return w.write("move_records.csv", header, rows)
}

// WriteStandings stores one row per entrant of a tournament.
func (w *Writer) WriteStandings(names []string, scores []float64, wins, faults []int) error {
	header := []string{"player", "score", "wins", "faults"}
	rows := make([][]string, 0, len(names))
	for i, name := range names {
		rows = append(rows, []string{
			name,
			strconv.FormatFloat(scores[i], 'g', -1, 64),
			strconv.Itoa(wins[i]),
			strconv.Itoa(faults[i]),
		})
	}
	return w.write("standings.csv", header, rows)
}
