package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"meal-planner/internal/planner"
)

var header = []string{"date", "breakfast", "lunch", "dinner", "calories", "protein", "carbs", "fat", "cost", "diversity"}

// WriteWeekCSV writes one row per day followed by a "week" row holding
// daily averages, the total cost and the weekly diversity score.
func WriteWeekCSV(w io.Writer, week planner.MealPlanWeek) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, day := range week.Days {
		row := []string{day.Date.Format("2006-01-02")}
		for _, slot := range planner.Slots {
			title := ""
			if r := day.Meal(slot); r != nil {
				title = r.Title
			}
			row = append(row, title)
		}
		row = append(row,
			num(day.TotalCalories), num(day.TotalProtein), num(day.TotalCarbs), num(day.TotalFat),
			money(day.TotalCost), num(day.DiversityScore),
		)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	summary := []string{"week", "", "", "",
		num(week.AverageCalories), num(week.AverageProtein), num(week.AverageCarbs), num(week.AverageFat),
		money(week.TotalCost), num(week.DiversityScore),
	}
	if err := cw.Write(summary); err != nil {
		return fmt.Errorf("failed to write csv summary: %w", err)
	}

	cw.Flush()
	return cw.Error()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
