package manifest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// HeaderValidator validates the manifest header row.
type HeaderValidator func(header []string) error

// RowValidator validates a data row.
type RowValidator func(row []string, rowNum int) error

// ParserConfig configures CSV parsing behavior.
type ParserConfig struct {
	HasHeader        bool
	Comma            rune
	Comment          rune
	LazyQuotes       bool
	TrimLeadingSpace bool
	SkipEmptyRows    bool
	HeaderValidators []HeaderValidator
	Validators       []RowValidator
}

// DefaultParserConfig returns a default parser configuration.
func DefaultParserConfig() ParserConfig {
	return ParserConfig{
		HasHeader:        true,
		Comma:            ',',
		TrimLeadingSpace: true,
		SkipEmptyRows:    true,
	}
}

// Parser handles CSV parsing with validation.
type Parser struct {
	config ParserConfig
	header []string
}

// NewParser creates a new CSV parser.
func NewParser(config ParserConfig) *Parser {
	return &Parser{
		config: config,
	}
}

// Parse reads CSV data and calls the handler for each data row. With
// HasHeader set, the header row is read, trimmed, and validated first;
// handlers receive it alongside every row.
func (p *Parser) Parse(reader io.Reader, handler func(rowNum int, headers []string, row []string) error) error {
	csvReader := csv.NewReader(reader)
	csvReader.Comma = p.config.Comma
	csvReader.Comment = p.config.Comment
	csvReader.LazyQuotes = p.config.LazyQuotes
	csvReader.TrimLeadingSpace = p.config.TrimLeadingSpace

	rowNum := 0

	if p.config.HasHeader {
		header, err := csvReader.Read()
		if err != nil {
			if err == io.EOF {
				return fmt.Errorf("manifest is empty")
			}
			return fmt.Errorf("failed to read header: %w", err)
		}

		for i := range header {
			header[i] = strings.TrimSpace(header[i])
		}

		for _, validator := range p.config.HeaderValidators {
			if err := validator(header); err != nil {
				return err
			}
		}

		p.header = header
		rowNum++
	}

	for {
		row, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read row %d: %w", rowNum+1, err)
		}

		rowNum++

		if p.config.SkipEmptyRows {
			isEmpty := true
			for _, cell := range row {
				if strings.TrimSpace(cell) != "" {
					isEmpty = false
					break
				}
			}
			if isEmpty {
				continue
			}
		}

		for i := range row {
			row[i] = strings.TrimSpace(row[i])
		}

		for _, validator := range p.config.Validators {
			if err := validator(row, rowNum); err != nil {
				return fmt.Errorf("row %d: %w", rowNum, err)
			}
		}

		if err := handler(rowNum, p.header, row); err != nil {
			return fmt.Errorf("row %d: %w", rowNum, err)
		}
	}

	return nil
}

// RequiredColumns validates that the header names every given column,
// case-insensitively.
func RequiredColumns(names ...string) HeaderValidator {
	return func(header []string) error {
		present := columnIndex(header)
		for _, name := range names {
			if _, ok := present[strings.ToLower(name)]; !ok {
				return fmt.Errorf("manifest header is missing the %s column", name)
			}
		}
		return nil
	}
}

// KnownColumns validates that the header names only the given columns,
// catching typos like "oriention" before rows are silently misread.
func KnownColumns(names ...string) HeaderValidator {
	known := make(map[string]bool, len(names))
	for _, name := range names {
		known[strings.ToLower(name)] = true
	}
	return func(header []string) error {
		for _, name := range header {
			if !known[strings.ToLower(name)] {
				return fmt.Errorf("manifest header names unknown column %q", name)
			}
		}
		return nil
	}
}
