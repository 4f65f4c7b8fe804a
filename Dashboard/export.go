package Dashboard

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	SummarySheet  = "Summary"
	MembersSheet  = "Members"
	ProgressSheet = "Progress"
	ActivitySheet = "Activity"
)

// WriteWorkbook writes the dashboard as an xlsx workbook with one sheet per section.
func WriteWorkbook(d *ProjectDashboard, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("error naming summary sheet: %w", err)
	}
	for _, name := range []string{MembersSheet, ProgressSheet, ActivitySheet} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("error creating sheet %s: %w", name, err)
		}
	}

	summary := [][]interface{}{
		{"Project", d.Project.Name},
		{"Description", d.Project.Description},
		{"Created", d.Project.CreatedAt.Format("2006-01-02")},
		{"Total tasks", d.TaskStats.Total},
		{"To do", d.TaskStats.Todo},
		{"In progress", d.TaskStats.InProgress},
		{"Done", d.TaskStats.Done},
	}
	if err := writeRows(f, SummarySheet, nil, summary); err != nil {
		return err
	}

	members := make([][]interface{}, 0, len(d.MemberStats))
	for _, m := range d.MemberStats {
		members = append(members, []interface{}{
			m.User.UserID, m.User.Name, string(m.Role),
			m.CompletedTasks, m.TotalTime, m.TotalTyping, m.ActivityCount,
		})
	}
	memberHeaders := []string{"User ID", "Name", "Role", "Completed tasks", "Time (min)", "Typing", "Activities"}
	if err := writeRows(f, MembersSheet, memberHeaders, members); err != nil {
		return err
	}

	progress := make([][]interface{}, 0, len(d.ProgressData))
	for _, p := range d.ProgressData {
		progress = append(progress, []interface{}{p.Date, p.Completed, p.Total})
	}
	if err := writeRows(f, ProgressSheet, []string{"Date", "Completed", "Total"}, progress); err != nil {
		return err
	}

	activity := make([][]interface{}, 0, len(d.RecentActivities))
	for _, a := range d.RecentActivities {
		task := ""
		if a.Task != nil {
			task = a.Task.Title
		}
		activity = append(activity, []interface{}{
			a.Timestamp.Format("2006-01-02 15:04:05"), a.User.UserID, string(a.Action), task, a.Description,
		})
	}
	activityHeaders := []string{"Time", "User ID", "Action", "Task", "Description"}
	if err := writeRows(f, ActivitySheet, activityHeaders, activity); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

// writeRows writes an optional bold header row followed by rows.
func writeRows(f *excelize.File, sheet string, headers []string, rows [][]interface{}) error {
	row := 1
	if len(headers) > 0 {
		values := make([]interface{}, len(headers))
		for i, h := range headers {
			values[i] = h
		}
		if err := f.SetSheetRow(sheet, "A1", &values); err != nil {
			return fmt.Errorf("error writing %s headers: %w", sheet, err)
		}
		headerStyle, err := f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Bold: true},
			Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6E6FA"}, Pattern: 1},
		})
		if err == nil {
			f.SetRowStyle(sheet, 1, 1, headerStyle)
		}
		row++
	}

	for _, values := range rows {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		values := values
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("error writing %s row %d: %w", sheet, row, err)
		}
		row++
	}
	return f.SetColWidth(sheet, "A", "G", 18)
}
