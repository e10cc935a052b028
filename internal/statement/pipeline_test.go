package statement

import (
	"bytes"
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/RishulGupta/Finance-Coach-AI/internal/category"
)

func newTestPipeline() *Pipeline {
	return NewPipeline(category.NewClassifier(category.DefaultRules, nil, category.DefaultConfig))
}

func TestProcessCSVEndToEnd(t *testing.T) {
	csv := strings.Join([]string{
		`Statement for Account XYZ`,
		`Date,Narration,Withdrawal Amt,Deposit Amt,Balance`,
		`20-07-2024,ZOMATO ORDER,450,0,10000`,
		`21-07-2024,SALARY CREDIT,0,50000,60000`,
	}, "\n")

	res := newTestPipeline().Process(context.Background(), strings.NewReader(csv), "statement.csv")

	if res.FailureCode != "" {
		t.Fatalf("failure code %s", res.FailureCode)
	}
	if len(res.Transactions) != 2 {
		t.Fatalf("got %d transactions, want 2", len(res.Transactions))
	}
	if res.Transactions[0].Category != "Food:Restaurants" {
		t.Errorf("first category = %q, want Food:Restaurants", res.Transactions[0].Category)
	}
	if res.Transactions[1].Category != "Income:Salary" {
		t.Errorf("second category = %q, want Income:Salary", res.Transactions[1].Category)
	}
	if res.Transactions[0].Month != "2024-07" || res.Transactions[1].Month != "2024-07" {
		t.Errorf("months = %q, %q, want 2024-07", res.Transactions[0].Month, res.Transactions[1].Month)
	}
	if len(res.Summaries) != 2 {
		t.Fatalf("got %d summary rows, want 2", len(res.Summaries))
	}
	for _, s := range res.Summaries {
		if s.Month != "2024-07" {
			t.Errorf("summary month = %q, want 2024-07", s.Month)
		}
	}
	// sorted by category within the month: Food:Restaurants before Income:Salary
	if !res.Summaries[0].TotalSpent.Equal(decimal.NewFromInt(450)) {
		t.Errorf("restaurant spend = %s, want 450", res.Summaries[0].TotalSpent)
	}
	if !res.Summaries[1].TotalIncome.Equal(decimal.NewFromInt(50000)) {
		t.Errorf("salary income = %s, want 50000", res.Summaries[1].TotalIncome)
	}
}

func TestProcessXLSXEndToEnd(t *testing.T) {
	f := excelize.NewFile()
	rows := [][]interface{}{
		{"Account Statement"},
		{"Date", "Narration", "Withdrawal Amt", "Deposit Amt", "Balance"},
		{"20-07-2024", "UBER TRIP", "320", "0", "9680"},
		{"21-07-2024", "NETFLIX RENEWAL", "649", "0", "9031"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("building workbook: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("serializing workbook: %v", err)
	}

	res := newTestPipeline().Process(context.Background(), bytes.NewReader(buf.Bytes()), "statement.xlsx")

	if res.FailureCode != "" {
		t.Fatalf("failure code %s", res.FailureCode)
	}
	if len(res.Transactions) != 2 {
		t.Fatalf("got %d transactions, want 2", len(res.Transactions))
	}
	if res.Transactions[0].Category != "Travel:Transport" {
		t.Errorf("first category = %q, want Travel:Transport", res.Transactions[0].Category)
	}
	if res.Transactions[1].Category != "Bills:Subscription" {
		t.Errorf("second category = %q, want Bills:Subscription", res.Transactions[1].Category)
	}
}

func TestProcessUnsupportedFileType(t *testing.T) {
	res := newTestPipeline().Process(context.Background(), strings.NewReader("%PDF-1.4"), "statement.pdf")

	if res.FailureCode != ErrUnsupportedFileType {
		t.Errorf("failure code = %s, want %s", res.FailureCode, ErrUnsupportedFileType)
	}
	if res.Transactions == nil || res.Summaries == nil {
		t.Fatal("failure result must carry empty tables, not nil")
	}
	if len(res.Transactions) != 0 || len(res.Summaries) != 0 {
		t.Error("failure result must have zero rows")
	}
}

func TestProcessNoUsableRows(t *testing.T) {
	// header found, every row fails admission
	csv := strings.Join([]string{
		`Date,Description,Debit,Credit,Balance`,
		`not-a-date,COFFEE,120,0,1000`,
		`20-07-2024,,0,500,1500`,
	}, "\n")

	res := newTestPipeline().Process(context.Background(), strings.NewReader(csv), "empty.csv")

	if res.FailureCode != ErrNoUsableRows {
		t.Errorf("failure code = %s, want %s", res.FailureCode, ErrNoUsableRows)
	}
	if len(res.Transactions) != 0 || len(res.Summaries) != 0 {
		t.Error("expected empty tables")
	}
	if res.Dropped != 2 {
		t.Errorf("dropped = %d, want 2", res.Dropped)
	}
}

func TestProcessNoHeaderXLSX(t *testing.T) {
	f := excelize.NewFile()
	row := []interface{}{"just", "some", "cells"}
	if err := f.SetSheetRow("Sheet1", "A1", &row); err != nil {
		t.Fatalf("building workbook: %v", err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("serializing workbook: %v", err)
	}

	res := newTestPipeline().Process(context.Background(), bytes.NewReader(buf.Bytes()), "noheader.xlsx")

	if res.FailureCode != ErrNoHeaderFound {
		t.Errorf("failure code = %s, want %s", res.FailureCode, ErrNoHeaderFound)
	}
	if len(res.Transactions) != 0 || len(res.Summaries) != 0 {
		t.Error("expected empty tables")
	}
}

func TestProcessGarbageXLSXPayload(t *testing.T) {
	res := newTestPipeline().Process(context.Background(), strings.NewReader("this is not a zip archive"), "broken.xlsx")

	if res.FailureCode != ErrMalformedPayload {
		t.Errorf("failure code = %s, want %s", res.FailureCode, ErrMalformedPayload)
	}
	if len(res.Transactions) != 0 || len(res.Summaries) != 0 {
		t.Error("expected empty tables")
	}
}

func TestProcessCSVNoRecognizableColumns(t *testing.T) {
	// unmatched header degrades to line zero, normalization finds nothing,
	// admission drops every row
	csv := "colA,colB\n1,2\n3,4\n"
	res := newTestPipeline().Process(context.Background(), strings.NewReader(csv), "odd.csv")

	if res.FailureCode != ErrNoUsableRows {
		t.Errorf("failure code = %s, want %s", res.FailureCode, ErrNoUsableRows)
	}
}

func TestProcessRepeatableOnSameInput(t *testing.T) {
	csv := strings.Join([]string{
		`Statement for Account XYZ`,
		`Date,Narration,Withdrawal Amt,Deposit Amt,Balance`,
		`20-07-2024,ZOMATO ORDER,450,0,10000`,
		`20-07-2024,SWIGGY DINNER,300,0,9700`,
		`21-06-2024,SALARY CREDIT,0,50000,60000`,
		`22-07-2024,GYM MEMBERSHIP,1200,0,8500`,
	}, "\n")

	p := newTestPipeline()
	first := p.Process(context.Background(), strings.NewReader(csv), "statement.csv")
	second := p.Process(context.Background(), strings.NewReader(csv), "statement.csv")

	if len(first.Transactions) == 0 {
		t.Fatalf("expected transactions, got failure code %s", first.FailureCode)
	}
	if !reflect.DeepEqual(first.Transactions, second.Transactions) {
		t.Errorf("transactions differ across runs:\n%v\n%v", first.Transactions, second.Transactions)
	}
	if !reflect.DeepEqual(first.Summaries, second.Summaries) {
		t.Errorf("summaries differ across runs:\n%v\n%v", first.Summaries, second.Summaries)
	}
	if first.Dropped != second.Dropped || first.Degraded != second.Degraded {
		t.Errorf("counters differ across runs: %d/%d vs %d/%d",
			first.Dropped, first.Degraded, second.Dropped, second.Degraded)
	}
}

func TestProcessBOMTolerant(t *testing.T) {
	csv := "\uFEFFDate,Narration,Withdrawal Amt,Deposit Amt,Balance\n20-07-2024,ZOMATO ORDER,450,0,10000\n"
	res := newTestPipeline().Process(context.Background(), strings.NewReader(csv), "bom.csv")

	if len(res.Transactions) != 1 {
		t.Fatalf("got %d transactions, want 1", len(res.Transactions))
	}
	if res.Transactions[0].Category != "Food:Restaurants" {
		t.Errorf("category = %q, want Food:Restaurants", res.Transactions[0].Category)
	}
}
