package excel

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

const (
	// ExportSheetName はエクスポートするシートの名前
	ExportSheetName = "Flashcards"
	// MaxCellLength はカード1面あたりの最大文字数
	MaxCellLength = 1000
)

var (
	ErrUnsupportedFormat = errors.New("excel: unsupported file format")
	ErrNoSheet           = errors.New("excel: workbook has no sheets")
	ErrTooManyRows       = errors.New("excel: too many rows")
)

// RowError はファイル内の特定の行に問題があることを表します
type RowError struct {
	Row    int // 1始まりの行番号
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

// Card は1行分 (A列=表面, B列=裏面) のカードです
type Card struct {
	Front string
	Back  string
}

// ParseResult は取り込み対象のカードと、片面だけ入力されていてスキップした行数です
type ParseResult struct {
	Cards   []Card
	Skipped int
}

// ReadCards は .xlsx または .csv からカードを読み込みます。
// 先頭行が front/back の見出しなら読み飛ばし、空行は無視します。
func ReadCards(r io.Reader, filename string, maxRows int) (*ParseResult, error) {
	var rows [][]string
	var err error
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		rows, err = readXLSX(r)
	case ".csv":
		rows, err = readCSV(r)
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, err
	}
	return parseRows(rows, maxRows)
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("excel: open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheet
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("excel: read rows: %w", err)
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("excel: read csv: %w", err)
	}
	return rows, nil
}

func parseRows(rows [][]string, maxRows int) (*ParseResult, error) {
	result := &ParseResult{}
	for i, row := range rows {
		front, back := cell(row, 0), cell(row, 1)
		if i == 0 && isHeader(front, back) {
			continue
		}
		if front == "" && back == "" {
			continue
		}
		if front == "" || back == "" {
			result.Skipped++
			continue
		}
		if utf8.RuneCountInString(front) > MaxCellLength || utf8.RuneCountInString(back) > MaxCellLength {
			return nil, &RowError{Row: i + 1, Reason: fmt.Sprintf("text longer than %d characters", MaxCellLength)}
		}
		if maxRows > 0 && len(result.Cards) >= maxRows {
			return nil, ErrTooManyRows
		}
		result.Cards = append(result.Cards, Card{Front: front, Back: back})
	}
	return result, nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(row[idx], "\ufeff"))
}

func isHeader(front, back string) bool {
	return strings.EqualFold(front, "front") && strings.EqualFold(back, "back")
}

// WriteCards は見出し行付きの .xlsx を w に書き出します
func WriteCards(w io.Writer, cards []Card) error {
	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, ExportSheetName); err != nil {
		return fmt.Errorf("excel: rename sheet: %w", err)
	}

	if err := f.SetSheetRow(ExportSheetName, "A1", &[]interface{}{"front", "back"}); err != nil {
		return fmt.Errorf("excel: write header: %w", err)
	}
	for i, c := range cards {
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(ExportSheetName, axis, &[]interface{}{c.Front, c.Back}); err != nil {
			return fmt.Errorf("excel: write row %d: %w", i+2, err)
		}
	}

	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetCellStyle(ExportSheetName, "A1", "B1", style)
	}
	_ = f.SetColWidth(ExportSheetName, "A", "B", 40)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("excel: write workbook: %w", err)
	}
	return nil
}
