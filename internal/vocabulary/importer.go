package vocabulary

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/petwords/pkg/models"
)

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath             string // Path to the Excel or CSV file
	SheetName            string // Name of the sheet to import
	TopicColumn          string // Column with the topic name
	EnglishColumn        string // Column with the English word
	ChineseColumn        string // Column with the Chinese translation
	ExampleColumn        string // Column with the example sentence
	ExampleChineseColumn string // Column with the translated example
	IDColumn             string // Optional column with the word id
	StartRow             int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		SheetName:            "Sheet1",
		TopicColumn:          "A",
		EnglishColumn:        "B",
		ChineseColumn:        "C",
		ExampleColumn:        "D",
		ExampleChineseColumn: "E",
		IDColumn:             "F",
		StartRow:             2, // By default, start from the second row (skip header)
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Imported       int
	Skipped        int
	Errors         []string
}

// Import reads an Excel or CSV file into a new catalog
func Import(config ImportConfig) (*Catalog, *ImportResult, error) {
	catalog := NewCatalog()
	result, err := ImportInto(catalog, config)
	if err != nil {
		return nil, nil, err
	}
	return catalog, result, nil
}

// ImportInto adds the words of an Excel or CSV file to catalog
func ImportInto(catalog *Catalog, config ImportConfig) (*ImportResult, error) {
	if config.StartRow < 1 {
		config.StartRow = 1
	}

	var rows [][]string
	var err error
	if strings.ToLower(filepath.Ext(config.FilePath)) == ".csv" {
		rows, err = readCSV(config.FilePath)
	} else {
		rows, err = readExcel(config.FilePath, config.SheetName)
	}
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: make([]string, 0)}
	currentTopic := ""
	for i, row := range rows {
		rowNum := i + 1
		if rowNum < config.StartRow || blank(row) {
			continue
		}

		// A row with only a first cell is a topic header ("Animals,,,")
		if onlyFirstCell(row) {
			currentTopic = strings.TrimSpace(row[0])
			continue
		}

		result.TotalProcessed++
		if err := processRow(catalog, row, config, currentTopic); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}
		result.Imported++
	}
	return result, nil
}

func readExcel(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %v", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %v", err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %v", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// processRow processes a single row from either source
func processRow(catalog *Catalog, row []string, config ImportConfig, currentTopic string) error {
	topic := cell(row, config.TopicColumn)
	if topic == "" {
		topic = currentTopic
	}
	w := models.Word{
		ID:             cell(row, config.IDColumn),
		English:        cleanWord(cell(row, config.EnglishColumn)),
		Chinese:        cell(row, config.ChineseColumn),
		Example:        cell(row, config.ExampleColumn),
		ExampleChinese: cell(row, config.ExampleChineseColumn),
	}

	if topic == "" {
		return fmt.Errorf("topic cannot be empty")
	}
	if w.English == "" {
		return fmt.Errorf("word cannot be empty")
	}
	if w.Chinese == "" {
		return fmt.Errorf("translation cannot be empty")
	}
	if w.ID == "" && Slug(w.English) == "" {
		return fmt.Errorf("cannot derive an id from %q", w.English)
	}

	catalog.Add(topic, w)
	return nil
}

func cell(row []string, column string) string {
	if column == "" {
		return ""
	}
	if idx := columnToIndex(column); idx >= 0 && idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func onlyFirstCell(row []string) bool {
	if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
		return false
	}
	for _, c := range row[1:] {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// cleanWord drops trailing notes in parentheses: "go (went, gone)" -> "go"
func cleanWord(word string) string {
	if i := strings.Index(word, "("); i > 0 {
		return strings.TrimSpace(word[:i])
	}
	return strings.TrimSpace(word)
}

// Helper function to convert Excel column letter to index
func columnToIndex(column string) int {
	column = strings.ToUpper(column)
	index := 0
	for i := 0; i < len(column); i++ {
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}
