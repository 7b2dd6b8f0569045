package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/bellringer/quiz-api/internal/domain/entity"
	apperrors "github.com/bellringer/quiz-api/internal/pkg/errors"
)

const (
	xlsxSheetName    = "Questions"
	xlsxListSep      = "|"
	maxImportRows    = 5000
	maxExportRows    = 10000
	importBatchLimit = 500
)

// Заголовок листа; импорт и экспорт используют один формат.
// Номера правильных вариантов начинаются с 1.
var xlsxHeader = []string{"category_id", "type", "difficulty", "question", "choices", "correct"}

// ImportRowError — ошибка в строке файла (нумерация как в Excel)
type ImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportReport — итог импорта
type ImportReport struct {
	Imported int              `json:"imported"`
	Skipped  int              `json:"skipped"`
	Errors   []ImportRowError `json:"errors,omitempty"`
}

// ImportXLSX загружает вопросы из первого листа книги. Некорректные строки
// пропускаются и попадают в отчёт, корректные сохраняются одной транзакцией.
func (s *QuestionService) ImportXLSX(ctx context.Context, r io.Reader) (*ImportReport, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: not a valid xlsx file: %v", apperrors.ErrValidation, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", apperrors.ErrValidation)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read sheet %q: %v", apperrors.ErrValidation, sheets[0], err)
	}

	start := 0
	if len(rows) > 0 && len(rows[0]) > 0 && strings.EqualFold(strings.TrimSpace(rows[0][0]), xlsxHeader[0]) {
		start = 1
	}
	if len(rows)-start > maxImportRows {
		return nil, fmt.Errorf("%w: at most %d rows per import", apperrors.ErrValidation, maxImportRows)
	}

	report := &ImportReport{}
	knownCategories := make(map[uint]bool)
	questions := make([]entity.Question, 0, len(rows)-start)

	for i := start; i < len(rows); i++ {
		rowNum := i + 1
		if isBlankRow(rows[i]) {
			continue
		}
		in, err := parseImportRow(rows[i])
		if err == nil {
			err = s.checkCategory(ctx, in.CategoryID, knownCategories)
		}
		var question *entity.Question
		if err == nil {
			question, err = buildQuestion(in)
		}
		if err != nil {
			report.Skipped++
			report.Errors = append(report.Errors, ImportRowError{Row: rowNum, Message: err.Error()})
			continue
		}
		questions = append(questions, *question)
	}

	for from := 0; from < len(questions); from += importBatchLimit {
		to := min(from+importBatchLimit, len(questions))
		if err := s.questionRepo.CreateBatch(ctx, questions[from:to]); err != nil {
			return nil, fmt.Errorf("failed to save imported questions: %w", err)
		}
		report.Imported += to - from
	}

	s.logger.Info("Question bank imported",
		zap.Int("imported", report.Imported),
		zap.Int("skipped", report.Skipped))
	return report, nil
}

// checkCategory проверяет существование категории, запоминая результат
func (s *QuestionService) checkCategory(ctx context.Context, id uint, known map[uint]bool) error {
	if ok, seen := known[id]; seen {
		if !ok {
			return fmt.Errorf("%w: category #%d", apperrors.ErrNotFound, id)
		}
		return nil
	}
	_, err := s.categoryRepo.GetByID(ctx, id)
	switch {
	case err == nil:
		known[id] = true
		return nil
	case isNotFound(err):
		known[id] = false
		return fmt.Errorf("%w: category #%d", apperrors.ErrNotFound, id)
	}
	return err
}

func parseImportRow(row []string) (QuestionInput, error) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	categoryID, err := strconv.ParseUint(cell(0), 10, 64)
	if err != nil || categoryID == 0 {
		return QuestionInput{}, fmt.Errorf("%w: invalid category_id %q", apperrors.ErrValidation, cell(0))
	}

	in := QuestionInput{
		CategoryID: uint(categoryID),
		Type:       cell(1),
		Difficulty: cell(2),
		Text:       cell(3),
	}

	if cell(4) == "" {
		return in, nil
	}
	texts := strings.Split(cell(4), xlsxListSep)
	correct := make(map[int]bool)
	if cell(5) != "" {
		for _, raw := range strings.Split(cell(5), xlsxListSep) {
			n, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil || n < 1 || n > len(texts) {
				return QuestionInput{}, fmt.Errorf("%w: invalid correct index %q", apperrors.ErrValidation, raw)
			}
			correct[n] = true
		}
	}
	for i, text := range texts {
		in.Choices = append(in.Choices, ChoiceInput{Text: text, IsCorrect: correct[i+1]})
	}
	return in, nil
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// ExportXLSX выгружает вопросы категории и её потомков в формате импорта
func (s *QuestionService) ExportXLSX(ctx context.Context, categoryID uint, w io.Writer) error {
	ids, err := s.resolver.ResolveSelectionIDs(ctx, categoryID)
	if err != nil {
		return err
	}
	questions, err := s.questionRepo.ListByCategories(ctx, ids, maxExportRows)
	if err != nil {
		return fmt.Errorf("failed to list questions: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", xlsxSheetName); err != nil {
		return err
	}

	sw, err := f.NewStreamWriter(xlsxSheetName)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	header := make([]interface{}, len(xlsxHeader))
	for i, h := range xlsxHeader {
		header[i] = h
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for i, q := range questions {
		texts := make([]string, 0, len(q.Choices))
		correct := make([]string, 0, 1)
		for j, c := range q.Choices {
			texts = append(texts, sanitizeForExcel(c.Text))
			if c.IsCorrect {
				correct = append(correct, strconv.Itoa(j+1))
			}
		}
		row := []interface{}{
			q.CategoryID,
			string(q.Type),
			string(q.Difficulty),
			sanitizeForExcel(q.Text),
			strings.Join(texts, xlsxListSep),
			strings.Join(correct, xlsxListSep),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush xlsx: %w", err)
	}
	return f.Write(w)
}

// sanitizeForExcel экранирует данные для защиты от formula injection
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}
