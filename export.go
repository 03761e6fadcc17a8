package stagesizer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/xuri/excelize/v2"
)

// ExportConfig configures the exporting of a sizing.
type ExportConfig struct {
	Filename  string
	OutputDir string
	AsCSV     bool // iteration history
	AsPDF     bool // sizing report
	AsXLSX    bool // sweep table
	Timestamp bool
}

// IsUseless returns whether this config doesn't actually do anything.
func (c ExportConfig) IsUseless() bool {
	return !c.AsCSV && !c.AsPDF && !c.AsXLSX
}

// path returns the output file name for the given kind and extension.
func (c ExportConfig) path(kind, ext string) string {
	dir := c.OutputDir
	if dir == "" {
		dir = "."
	}
	name := c.Filename
	if name == "" {
		name = "stage"
	}
	if c.Timestamp {
		t := time.Now()
		name = fmt.Sprintf("%s-%s-%d-%02d-%02dT%02d.%02d.%02d", kind, name, t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second())
	} else {
		name = fmt.Sprintf("%s-%s", kind, name)
	}
	return filepath.Join(dir, name+"."+ext)
}

var historyHeader = []string{"iteration", "dry_mass_guess", "propellant_mass", "fuel_mass", "oxidizer_mass", "fuel_tank_mass", "oxidizer_tank_mass", "residual"}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// WriteHistoryCSV writes one CSV record per pass of the iteration.
func WriteHistoryCSV(w io.Writer, r Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(historyHeader); err != nil {
		return err
	}
	for _, it := range r.History {
		record := []string{strconv.Itoa(it.Number), ftoa(it.DryMassGuess), ftoa(it.PropellantMass), ftoa(it.FuelMass),
			ftoa(it.OxidizerMass), ftoa(it.FuelTankMass), ftoa(it.OxidizerTankMass), ftoa(it.Residual)}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePDF writes a one page sizing report.
func WritePDF(w io.Writer, title string, in Inputs, r Result) error {
	if title == "" {
		title = "Propulsion stage sizing"
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, title)
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", time.Now().UTC().Format("2006-01-02 15:04:05 MST")))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("%s, fuel tank %s, oxidizer tank %s", in.PropellantType(), in.FuelTankShape, in.OxTankShape))
	pdf.Ln(10)

	table := func(header string, rows [][2]string) {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, header)
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 10)
		for _, row := range rows {
			pdf.CellFormat(80, 6, row[0], "1", 0, "L", false, 0, "")
			pdf.CellFormat(60, 6, row[1], "1", 1, "R", false, 0, "")
		}
		pdf.Ln(4)
	}
	table("Inputs", [][2]string{
		{"Thruster mass", fmt.Sprintf("%.3f kg", in.ThrusterMass)},
		{"Isp", fmt.Sprintf("%.1f s", in.Isp)},
		{"Delta-v", fmt.Sprintf("%.1f m/s", in.DeltaV)},
		{"Contingency factor", fmt.Sprintf("%.3f", in.ContingencyFactor)},
		{"Oxidizer:fuel ratio", fmt.Sprintf("%.3f", in.OxFuelRatio)},
		{"Payload mass", fmt.Sprintf("%.3f kg", in.PayloadMass)},
		{"Fuel density", fmt.Sprintf("%.1f kg/m^3", in.FuelDensity)},
		{"Oxidizer density", fmt.Sprintf("%.1f kg/m^3", in.OxDensity)},
		{"Aspect ratio", fmt.Sprintf("%.2f", in.AspectRatio)},
		{"Mass factor", fmt.Sprintf("%.2f", in.MassFactor)},
		{"Wall density", fmt.Sprintf("%.1f kg/m^3", in.WallDensity)},
		{"Wall ultimate strength", fmt.Sprintf("%.1f MPa", in.WallSUlt)},
		{"Safety factor", fmt.Sprintf("%.2f", in.SafetyFactor)},
		{"Operating pressure", fmt.Sprintf("%.3f MPa", in.OpPressure)},
	})
	table("Results", [][2]string{
		{"Iterations", fmt.Sprintf("%d (last change %.4f kg)", r.Iterations, r.Residual)},
		{"Fuel mass", fmt.Sprintf("%.4f kg", r.FuelMass)},
		{"Oxidizer mass", fmt.Sprintf("%.4f kg", r.OxidizerMass)},
		{"Fuel volume", fmt.Sprintf("%.5f m^3", r.FuelVolume)},
		{"Oxidizer volume", fmt.Sprintf("%.5f m^3", r.OxidizerVolume)},
		{"Fuel tank radius", fmt.Sprintf("%.4f m", r.FuelTankRadius)},
		{"Oxidizer tank radius", fmt.Sprintf("%.4f m", r.OxidizerTankRadius)},
		{"Fuel tank mass", fmt.Sprintf("%.4f kg", r.FuelTankMass)},
		{"Oxidizer tank mass", fmt.Sprintf("%.4f kg", r.OxidizerTankMass)},
		{"System dry mass", fmt.Sprintf("%.4f kg", r.SystemDryMass)},
		{"System wet mass", fmt.Sprintf("%.4f kg", r.SystemWetMass)},
		{"Stage dry mass", fmt.Sprintf("%.4f kg", r.StageDryMass)},
		{"Stage wet mass", fmt.Sprintf("%.4f kg", r.StageWetMass)},
	})
	return pdf.Output(w)
}

// WriteSweepXLSX writes the sweep as a single worksheet, one row per point.
func WriteSweepXLSX(w io.Writer, s Sweep) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := "Sweep"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	param := s.Parameter.String()
	if unit := s.Parameter.Unit(); unit != "" {
		param = fmt.Sprintf("%s (%s)", param, unit)
	}
	header := []interface{}{param, "iterations", "fuel_mass (kg)", "oxidizer_mass (kg)", "fuel_tank_mass (kg)", "oxidizer_tank_mass (kg)",
		"fuel_tank_radius (m)", "oxidizer_tank_radius (m)", "system_dry_mass (kg)", "system_wet_mass (kg)", "stage_wet_mass (kg)", "error"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, pt := range s.Points {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		var row []interface{}
		if pt.Err != nil {
			row = []interface{}{pt.Value, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, pt.Err.Error()}
		} else {
			r := pt.Result
			row = []interface{}{pt.Value, r.Iterations, r.FuelMass, r.OxidizerMass, r.FuelTankMass, r.OxidizerTankMass,
				r.FuelTankRadius, r.OxidizerTankRadius, r.SystemDryMass, r.SystemWetMass, r.StageWetMass, ""}
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return f.Write(w)
}

// Export writes the files requested by the configuration and returns their paths.
func Export(conf ExportConfig, in Inputs, r Result) ([]string, error) {
	if conf.IsUseless() {
		return nil, nil
	}
	var paths []string
	if conf.AsCSV {
		path := conf.path("history", "csv")
		if err := writeFile(path, func(w io.Writer) error { return WriteHistoryCSV(w, r) }); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	if conf.AsPDF {
		path := conf.path("report", "pdf")
		if err := writeFile(path, func(w io.Writer) error { return WritePDF(w, conf.Filename, in, r) }); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// ExportSweep writes the sweep workbook if the configuration requests it, and returns its path.
func ExportSweep(conf ExportConfig, s Sweep) (string, error) {
	if !conf.AsXLSX {
		return "", nil
	}
	path := conf.path("sweep-"+s.Parameter.String(), "xlsx")
	return path, writeFile(path, func(w io.Writer) error { return WriteSweepXLSX(w, s) })
}

func writeFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
