package stagesizer

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestWriteHistoryCSV(t *testing.T) {
	r, err := Calculate(referenceInputs())
	if err != nil {
		t.Fatalf("err %s", err)
	}
	var buf bytes.Buffer
	if err := WriteHistoryCSV(&buf, r); err != nil {
		t.Fatalf("err %s", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("err %s", err)
	}
	if len(records) != r.Iterations+1 {
		t.Fatalf("expected %d records, got %d", r.Iterations+1, len(records))
	}
	if strings.Join(records[0], ",") != strings.Join(historyHeader, ",") {
		t.Fatalf("incorrect header %v", records[0])
	}
	if records[1][0] != "1" || records[len(records)-1][0] != "5" {
		t.Fatal("incorrect iteration numbers")
	}
}

func TestWritePDF(t *testing.T) {
	in := referenceInputs()
	r, _ := Calculate(in)
	var buf bytes.Buffer
	if err := WritePDF(&buf, "", in, r); err != nil {
		t.Fatalf("err %s", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatal("output is not a PDF")
	}
}

func TestWriteSweepXLSX(t *testing.T) {
	sweep, err := NewEngine().Sweep(referenceInputs(), SweepIsp, 0, 400, 5, 2)
	if err != nil {
		t.Fatalf("err %s", err)
	}
	var buf bytes.Buffer
	if err := WriteSweepXLSX(&buf, sweep); err != nil {
		t.Fatalf("err %s", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("err %s", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Sweep")
	if err != nil {
		t.Fatalf("err %s", err)
	}
	if len(rows) != 6 {
		t.Fatalf("expected 6 rows, got %d", len(rows))
	}
	if rows[0][0] != "isp (s)" {
		t.Fatalf("incorrect header %s", rows[0][0])
	}
	if errCell, _ := f.GetCellValue("Sweep", "L2"); !strings.Contains(errCell, "isp") {
		t.Fatalf("first point should report the Isp error, got `%s`", errCell)
	}
	if iters, _ := f.GetCellValue("Sweep", "B6"); iters == "" {
		t.Fatal("last point has no iteration count")
	}
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	in := referenceInputs()
	r, _ := Calculate(in)
	if !(ExportConfig{}).IsUseless() {
		t.Fatal("empty config should be useless")
	}
	if (ExportConfig{AsXLSX: true}).IsUseless() {
		t.Fatal("sweep-only config is not useless")
	}
	if paths, err := Export(ExportConfig{Filename: "ref", OutputDir: filepath.Join(dir, "none")}, in, r); err != nil || paths != nil {
		t.Fatalf("useless config exported %v (%v)", paths, err)
	}
	if _, err := os.Stat(filepath.Join(dir, "none")); !os.IsNotExist(err) {
		t.Fatal("useless config created the output directory")
	}
	paths, err := Export(ExportConfig{Filename: "ref", OutputDir: filepath.Join(dir, "out"), AsCSV: true, AsPDF: true}, in, r)
	if err != nil {
		t.Fatalf("err %s", err)
	}
	if len(paths) != 2 || filepath.Base(paths[0]) != "history-ref.csv" || filepath.Base(paths[1]) != "report-ref.pdf" {
		t.Fatalf("unexpected paths %v", paths)
	}
	for _, path := range paths {
		if st, err := os.Stat(path); err != nil || st.Size() == 0 {
			t.Fatalf("%s not written", path)
		}
	}

	sweep, _ := NewEngine().Sweep(in, SweepDeltaV, 1000, 2000, 3, 1)
	if path, err := ExportSweep(ExportConfig{OutputDir: dir}, sweep); err != nil || path != "" {
		t.Fatal("sweep exported without being requested")
	}
	path, err := ExportSweep(ExportConfig{Filename: "ref", OutputDir: dir, AsXLSX: true, Timestamp: true}, sweep)
	if err != nil {
		t.Fatalf("err %s", err)
	}
	if !strings.HasPrefix(filepath.Base(path), "sweep-delta_v-ref-") || filepath.Ext(path) != ".xlsx" {
		t.Fatalf("unexpected path %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("err %s", err)
	}
}
