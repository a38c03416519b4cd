// Package export writes pipeline results to downloadable files.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/localatlas/bizscout/internal/model"
	"github.com/localatlas/bizscout/internal/store"
)

// filePrefix names the exported result files; cleanup keys off it too.
const filePrefix = "business_data_"

var header = []string{"name", "latitude", "longitude", "phone", "email", "opening_hours", "website", "reviews_comments"}

// Writer exports business records into a directory.
type Writer struct {
	dir string
}

// NewWriter creates a Writer rooted at dir.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// WriteAll writes the records as both CSV and XLSX, named by timestamp.
// The two files are written concurrently; both paths are returned.
func (w *Writer) WriteAll(ctx context.Context, records []model.BusinessRecord, ts time.Time) (csvPath, xlsxPath string, err error) {
	base := filepath.Join(w.dir, filePrefix+ts.Format("20060102_150405"))
	csvPath = base + ".csv"
	xlsxPath = base + ".xlsx"

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error { return w.writeCSV(csvPath, records) })
	g.Go(func() error { return w.writeXLSX(xlsxPath, records) })
	if err := g.Wait(); err != nil {
		return "", "", err
	}

	zap.L().Info("export: files written",
		zap.String("csv", csvPath),
		zap.String("xlsx", xlsxPath),
		zap.Int("records", len(records)),
	)
	return csvPath, xlsxPath, nil
}

func (w *Writer) writeCSV(path string, records []model.BusinessRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for _, rec := range records {
		if err := cw.Write(recordRow(rec)); err != nil {
			return eris.Wrap(err, "export: write csv row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}

func (w *Writer) writeXLSX(path string, records []model.BusinessRecord) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Businesses")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	hr := sheet.AddRow()
	for _, h := range header {
		hr.AddCell().Value = h
	}
	for _, rec := range records {
		row := sheet.AddRow()
		for _, v := range recordRow(rec) {
			row.AddCell().Value = v
		}
	}

	return eris.Wrapf(f.Save(path), "export: save %s", path)
}

// recordRow flattens a record to wire strings; absent fields become the
// "unknown" sentinel here, at the serialization boundary.
func recordRow(rec model.BusinessRecord) []string {
	return []string{
		rec.Name,
		strconv.FormatFloat(rec.Latitude, 'f', -1, 64),
		strconv.FormatFloat(rec.Longitude, 'f', -1, 64),
		rec.Phone.Display(),
		rec.Email.Display(),
		rec.OpeningHours.Display(),
		rec.Website.Display(),
		rec.Reviews.Display(),
	}
}

// WriteHistoryCSV renders search history as CSV.
func WriteHistoryCSV(out io.Writer, searches []store.Search) error {
	cw := csv.NewWriter(out)
	if err := cw.Write([]string{"Search Term", "Timestamp"}); err != nil {
		return eris.Wrap(err, "export: write history header")
	}
	for _, s := range searches {
		if err := cw.Write([]string{s.Term, s.CreatedAt.Format(time.RFC3339)}); err != nil {
			return eris.Wrap(err, "export: write history row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush history csv")
}

// CleanupOld deletes exported files older than maxAge. Returns how many
// files were removed. Unreadable entries are skipped, not fatal.
func CleanupOld(dir string, maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, eris.Wrapf(err, "export: read dir %s", dir)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) {
			continue
		}
		if !strings.HasSuffix(name, ".csv") && !strings.HasSuffix(name, ".xlsx") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(dir, name)
		if err := os.Remove(path); err != nil {
			zap.L().Warn("export: cleanup failed", zap.String("file", path), zap.Error(err))
			continue
		}
		removed++
	}

	if removed > 0 {
		zap.L().Info(fmt.Sprintf("export: removed %d stale files", removed))
	}
	return removed, nil
}
