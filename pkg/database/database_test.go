package database

import (
	"strings"
	"testing"
	"time"
)

func Test_pgxDSN_URLForm(t *testing.T) {
	got, err := pgxDSN("postgres://u:p@db:5432/legal?sslmode=disable", 3*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "connect_timeout=3") || !strings.Contains(got, "sslmode=disable") {
		t.Fatalf("got %q", got)
	}
}

func Test_pgxDSN_KeywordForm(t *testing.T) {
	got, err := pgxDSN("host=db user=u dbname=legal", 5*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if got != "host=db user=u dbname=legal connect_timeout=5" {
		t.Fatalf("got %q", got)
	}
}

func Test_pgxDSN_KeepsExplicitTimeout(t *testing.T) {
	in := "postgres://db/legal?connect_timeout=9"
	got, _ := pgxDSN(in, 2*time.Second)
	if got != in {
		t.Fatalf("explicit timeout should win, got %q", got)
	}
}

func Test_pgxDSN_Empty(t *testing.T) {
	if _, err := pgxDSN("", time.Second); err == nil {
		t.Fatal("empty DSN should fail")
	}
}
