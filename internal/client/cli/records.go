package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dnovikovs/recordkeeper/internal/client/models"
)

// List refreshes the current page from the server and prints it.
func (a *App) List(ctx context.Context) error {
	if err := a.records.List(ctx, nil); err != nil {
		return err
	}
	a.printPage()
	return nil
}

func (a *App) printPage() {
	items := a.records.Records()
	if len(items) == 0 {
		printlnFn("No records")
		return
	}
	for _, r := range items {
		sign := "-"
		if r.Type == models.RecordTypeIncome {
			sign = "+"
		}
		printlnFn(fmt.Sprintf("%s  %s  %s%.2f  %-12s %s", r.ID, r.RecordDate, sign, r.Amount, r.Category, r.Description))
	}
	printlnFn(fmt.Sprintf("Page %d/%d (%d records total)", a.records.Page(), a.records.TotalPages(), a.records.Total()))
}

// promptRecordForm collects a record form interactively. def supplies the
// starting values shown in the prompts.
func (a *App) promptRecordForm(def models.RecordForm) (models.RecordForm, error) {
	var form models.RecordForm
	var err error

	if def.Type == "" {
		def.Type = string(models.RecordTypeExpense)
	}
	if def.RecordDate == "" {
		def.RecordDate = time.Now().Format(models.RecordDateLayout)
	}

	form.Type, err = GetTextWithDefault(a.reader, "Type (income/expense)", def.Type, os.Stdout)
	if err != nil {
		return form, err
	}

	amountText, err := GetTextWithDefault(a.reader, "Amount", strconv.FormatFloat(def.Amount, 'f', -1, 64), os.Stdout)
	if err != nil {
		return form, err
	}
	form.Amount, err = strconv.ParseFloat(amountText, 64)
	if err != nil {
		printlnFn("  amount must be a number")
		return form, err
	}

	form.Category, err = GetTextWithDefault(a.reader, "Category", def.Category, os.Stdout)
	if err != nil {
		return form, err
	}

	form.Description, err = GetTextWithDefault(a.reader, "Description", def.Description, os.Stdout)
	if err != nil {
		return form, err
	}

	form.RecordDate, err = GetTextWithDefault(a.reader, "Date (YYYY-MM-DD)", def.RecordDate, os.Stdout)
	return form, err
}

// Add creates a record from interactive input.
func (a *App) Add(ctx context.Context) error {
	form, err := a.promptRecordForm(models.RecordForm{})
	if err != nil {
		return err
	}

	rec, err := a.records.Create(ctx, form)
	if err != nil {
		printValidation(err)
		return err
	}

	printlnFn("Created record " + rec.ID)
	return nil
}

// Edit updates an existing record, prompting with its current values.
func (a *App) Edit(ctx context.Context, id string) error {
	current, err := a.records.GetOne(ctx, id)
	if err != nil {
		return err
	}

	form, err := a.promptRecordForm(models.RecordForm{
		Type:        string(current.Type),
		Amount:      current.Amount,
		Category:    current.Category,
		Description: current.Description,
		RecordDate:  current.RecordDate,
	})
	if err != nil {
		return err
	}

	if _, err := a.records.Update(ctx, id, form); err != nil {
		printValidation(err)
		return err
	}

	printlnFn("Updated record " + id)
	return nil
}

// Remove deletes a record by id.
func (a *App) Remove(ctx context.Context, id string) error {
	if err := a.records.Delete(ctx, id); err != nil {
		return err
	}
	printlnFn("Deleted record " + id)
	return nil
}

// Show prints a single record fetched from the server.
func (a *App) Show(ctx context.Context, id string) error {
	rec, err := a.records.GetOne(ctx, id)
	if err != nil {
		return err
	}

	printlnFn("ID:          " + rec.ID)
	printlnFn("Type:        " + string(rec.Type))
	printlnFn(fmt.Sprintf("Amount:      %.2f", rec.Amount))
	printlnFn("Category:    " + rec.Category)
	printlnFn("Description: " + rec.Description)
	printlnFn("Date:        " + rec.RecordDate)
	return nil
}

// Stats prints the aggregates of the loaded page. These cover only what is
// currently cached, not the whole server-side dataset.
func (a *App) Stats(ctx context.Context) error {
	stats := a.records.Statistics()
	printlnFn(fmt.Sprintf("Income:  %.2f", stats.Income))
	printlnFn(fmt.Sprintf("Expense: %.2f", stats.Expense))
	printlnFn(fmt.Sprintf("Balance: %.2f", stats.Balance))
	printlnFn(fmt.Sprintf("Records on this page: %d", stats.Count))
	return nil
}

// PageCmd handles "page next", "page prev" and "page <n>".
func (a *App) PageCmd(ctx context.Context, arg string) error {
	var err error
	switch arg {
	case "next":
		err = a.records.NextPage(ctx)
	case "prev":
		err = a.records.PrevPage(ctx)
	default:
		n, convErr := strconv.Atoi(arg)
		if convErr != nil {
			printlnFn("Usage: page next|prev|<number>")
			return nil
		}
		err = a.records.GoToPage(ctx, n)
	}
	if err != nil {
		return err
	}
	a.printPage()
	return nil
}

// Profile prints the cached user profile.
func (a *App) Profile(ctx context.Context) error {
	a.sessions.CheckAuth(ctx)

	user := a.sessions.User()
	if user == nil {
		printlnFn("Profile not available")
		return nil
	}

	printlnFn("Name:  " + user.Name)
	printlnFn("Email: " + user.Email)
	if user.LastLoginAt != nil {
		printlnFn("Last login: " + user.LastLoginAt.Format(time.RFC3339))
	}
	return nil
}

// Prefs prints the device preferences, or updates them when given
// key=value arguments (theme=dark language=en-US currency=USD).
func (a *App) Prefs(ctx context.Context, args []string) error {
	if len(args) == 0 {
		prefs, err := a.sessions.Preferences(ctx)
		if err != nil {
			return err
		}
		printlnFn("theme=" + prefs.Theme + " language=" + prefs.Language + " currency=" + prefs.Currency)
		return nil
	}

	var patch models.Preferences
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			printlnFn("Usage: prefs [theme=... language=... currency=...]")
			return nil
		}
		switch key {
		case "theme":
			patch.Theme = value
		case "language":
			patch.Language = value
		case "currency":
			patch.Currency = value
		default:
			printlnFn("Unknown preference: " + key)
			return nil
		}
	}

	prefs, err := a.sessions.UpdatePreferences(ctx, patch)
	if err != nil {
		return err
	}
	printlnFn("theme=" + prefs.Theme + " language=" + prefs.Language + " currency=" + prefs.Currency)
	return nil
}
