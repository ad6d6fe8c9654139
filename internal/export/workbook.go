// Package export выгружает балансы и журнал проводок в Excel.
package export

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Spok95/practice-fund/internal/models"
	"github.com/Spok95/practice-fund/internal/rules"
)

const (
	SheetBalances = "Balances"
	SheetLedger   = "Ledger"
	SheetPayments = "Payments"
)

// Report — всё, что попадает в файл. Players уже отсортированы вызывающим.
type Report struct {
	Players  []models.Player
	Entries  []rules.Adjustment
	Payments []models.Payment
	Created  time.Time
}

type Workbook struct {
	File *excelize.File
}

// column: строковые ячейки пишутся как есть, суммы — числом с двумя знаками.
type column struct {
	title string
	value func(i int) any
}

func Build(r Report) (*Workbook, error) {
	f := excelize.NewFile()
	money, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return nil, fmt.Errorf("money style: %w", err)
	}

	names := make(map[int64]string, len(r.Players))
	for _, p := range r.Players {
		names[p.ID] = p.Name
	}
	name := func(id int64) string {
		if n, ok := names[id]; ok {
			return n
		}
		return "#" + strconv.FormatInt(id, 10)
	}

	sheets := []struct {
		title string
		rows  int
		cols  []column
		money int // номер колонки с суммой
	}{
		{SheetBalances, len(r.Players), []column{
			{"Player", func(i int) any { return r.Players[i].Name }},
			{"Group", func(i int) any { return group(r.Players[i].GroupID) }},
			{"Role", func(i int) any { return string(r.Players[i].Role) }},
			{"Balance", func(i int) any { return amount(r.Players[i].Balance) }},
		}, 4},
		{SheetLedger, len(r.Entries), []column{
			{"Date", func(i int) any { return r.Entries[i].Date.Format(models.DateLayout) }},
			{"Player", func(i int) any { return name(r.Entries[i].PlayerID) }},
			{"Kind", func(i int) any { return string(r.Entries[i].Kind) }},
			{"Amount", func(i int) any { return amount(r.Entries[i].Amount) }},
			{"Reason", func(i int) any { return r.Entries[i].Reason }},
		}, 4},
		{SheetPayments, len(r.Payments), []column{
			{"Date", func(i int) any { return r.Payments[i].Date.Format(models.DateLayout) }},
			{"Player", func(i int) any { return name(r.Payments[i].PlayerID) }},
			{"Amount", func(i int) any { return amount(r.Payments[i].Amount) }},
			{"Notes", func(i int) any { return deref(r.Payments[i].Notes) }},
		}, 3},
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.title); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.title); err != nil {
			return nil, fmt.Errorf("new sheet: %w", err)
		}
		for c, col := range s.cols {
			if err := f.SetCellStr(s.title, cell(c+1, 1), col.title); err != nil {
				return nil, fmt.Errorf("%s header: %w", s.title, err)
			}
		}
		for row := 0; row < s.rows; row++ {
			for c, col := range s.cols {
				if err := f.SetCellValue(s.title, cell(c+1, row+2), col.value(row)); err != nil {
					return nil, fmt.Errorf("%s %s: %w", s.title, cell(c+1, row+2), err)
				}
			}
		}
		if s.rows > 0 {
			_ = f.SetCellStyle(s.title, cell(s.money, 2), cell(s.money, s.rows+1), money)
		}
		if err := applyFormatting(f, s.title); err != nil {
			return nil, fmt.Errorf("%s formatting: %w", s.title, err)
		}
	}
	f.SetActiveSheet(0)

	created := r.Created
	if created.IsZero() {
		created = time.Now()
	}
	if err := f.SetDocProps(&excelize.DocProperties{
		Title:   "Team fund balances",
		Creator: "teamfund",
		Created: created.UTC().Format(time.RFC3339),
	}); err != nil {
		return nil, fmt.Errorf("doc props: %w", err)
	}
	return &Workbook{File: f}, nil
}

func (w *Workbook) WriteTo(out io.Writer) (int64, error) {
	return w.File.WriteTo(out)
}

func (w *Workbook) SaveAs(path string) error {
	return w.File.SaveAs(path)
}

func (w *Workbook) Close() error {
	return w.File.Close()
}

// Filename — имя файла выгрузки на дату.
func Filename(at time.Time) string {
	return sanitizeFileName(fmt.Sprintf("team balances %s.xlsx", at.Format(models.DateLayout)))
}

// amount — сумма в рублях для числовой ячейки.
func amount(m models.Money) float64 {
	return float64(m) / 100
}

func group(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
