package core

import (
	"testing"
	"time"
)

func TestClientNames(t *testing.T) {
	c := Client{Name: "Иван", Surname: "Петров", MiddleName: "Сергеевич"}
	if got := c.FullName(); got != "Петров Иван Сергеевич" {
		t.Fatalf("FullName = %q", got)
	}
	if got := c.ShortName(); got != "Петров Иван С." {
		t.Fatalf("ShortName = %q", got)
	}

	c.MiddleName = ""
	if got := c.FullName(); got != "Петров Иван" {
		t.Fatalf("FullName without patronymic = %q", got)
	}
	if got := c.ShortName(); got != "Петров Иван" {
		t.Fatalf("ShortName without patronymic = %q", got)
	}
}

func TestFormatDateTime(t *testing.T) {
	// 2024-12-31T15:30:45Z is 18:30:45 in Moscow.
	ts := time.Date(2024, 12, 31, 15, 30, 45, 0, time.UTC)
	if got := FormatDateTime(ts); got != "31.12.2024, 18:30" {
		t.Fatalf("FormatDateTime = %q", got)
	}
	if got := FormatDateTimeSec(ts); got != "31.12.2024, 18:30:45" {
		t.Fatalf("FormatDateTimeSec = %q", got)
	}
}
