package cli

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/abdullah-sah/brain-assistant/internal/core/ports/driving"
)

const exportSheet = "Tasks"

var exportHeaders = []string{
	"Title",
	"Description",
	"Due Date",
	"Status",
	"Overdue",
	"Source",
	"Created",
	"Note ID",
	"Task ID",
}

// exportRow flattens a task into the export columns.
func exportRow(t driving.TaskView) []string {
	desc, due := "", ""
	if t.Description != nil {
		desc = *t.Description
	}
	if t.DueDate != nil {
		due = t.DueDate.String()
	}
	return []string{
		t.Title,
		desc,
		due,
		t.Status.String(),
		strconv.FormatBool(t.IsOverdue),
		t.Source.String(),
		t.CreatedAt.Local().Format("2006-01-02 15:04"),
		t.NoteID,
		t.ID,
	}
}

func writeTasksCSV(w io.Writer, tasks []driving.TaskView) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeaders); err != nil {
		return fmt.Errorf("csv write: %w", err)
	}
	for i := range tasks {
		if err := cw.Write(exportRow(tasks[i])); err != nil {
			return fmt.Errorf("csv write: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// tasksWorkbook builds a single-sheet workbook with a bold, filterable header.
func tasksWorkbook(tasks []driving.TaskView) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	overdue, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Color: "C00000"}})
	if err != nil {
		return nil, err
	}

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(exportSheet, cell, h)
	}
	last, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	_ = f.SetCellStyle(exportSheet, "A1", last, bold)

	for r := range tasks {
		row := r + 2
		for c, v := range exportRow(tasks[r]) {
			cell, _ := excelize.CoordinatesToCellName(c+1, row)
			_ = f.SetCellValue(exportSheet, cell, v)
		}
		if tasks[r].IsOverdue {
			cell, _ := excelize.CoordinatesToCellName(3, row)
			_ = f.SetCellStyle(exportSheet, cell, cell, overdue)
		}
	}

	_ = f.SetColWidth(exportSheet, "A", "A", 40) // title
	_ = f.SetColWidth(exportSheet, "B", "B", 48) // description
	_ = f.SetColWidth(exportSheet, "C", "F", 12)
	_ = f.SetColWidth(exportSheet, "G", "G", 18) // created
	_ = f.SetColWidth(exportSheet, "H", "I", 38) // ids

	end, _ := excelize.CoordinatesToCellName(len(exportHeaders), len(tasks)+1)
	if err := f.AutoFilter(exportSheet, "A1:"+end, nil); err != nil {
		return nil, err
	}
	_ = f.SetDocProps(&excelize.DocProperties{
		Title:   "brain tasks",
		Created: time.Now().UTC().Format(time.RFC3339),
	})
	return f, nil
}

func writeTasksXLSX(path string, tasks []driving.TaskView) error {
	f, err := tasksWorkbook(tasks)
	if err != nil {
		return fmt.Errorf("xlsx build: %w", err)
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}
