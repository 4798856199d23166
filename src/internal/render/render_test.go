package render

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"publist/src/internal/schema"
	"publist/src/internal/store"
)

func row(id string, year int, typ, ref string) schema.Row {
	return schema.Row{DOI: id, Record: schema.Record{Title: id, Year: year, Type: typ, Reference: ref}}
}

func sample() []schema.Row {
	return []schema.Row{
		row("10.1/a", 2019, "journal-article", "Ref A"),
		{DOI: "10.1/empty"},
		row("10.1/b", 2020, "book", "Ref B"),
		row("10.1/c", 2020, "proceedings-article", "Ref C"),
	}
}

func TestMarkdown_GroupsNewestFirst(t *testing.T) {
	got := Markdown(sample())
	want := "## 2020\nRef B\n\nRef C\n\n\n## 2019\nRef A\n\n"
	if got != want {
		t.Fatalf("Markdown =\n%q\nwant\n%q", got, want)
	}
	if strings.Index(got, "## 2020") > strings.Index(got, "## 2019") {
		t.Fatal("2020 must precede 2019")
	}
	if Markdown(nil) != "" {
		t.Fatal("no rows should render empty")
	}
}

func TestMarkdown_SkipsRowsWithoutYear(t *testing.T) {
	rows := append(sample(), row("10.1/undated", 0, "journal-article", "Ref Undated"))
	got := Markdown(rows)
	if strings.Contains(got, "## 0") || strings.Contains(got, "Ref Undated") {
		t.Fatalf("undated row rendered:\n%s", got)
	}
	if got != Markdown(sample()) {
		t.Fatalf("Markdown =\n%q", got)
	}
}

func TestHTML(t *testing.T) {
	html, err := HTML("## 2020\n**Zio, E.** (2020). **T**. J. [dx.doi.org/10.1/a](https://dx.doi.org/10.1/a)\n")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"<h2>2020</h2>", "<strong>Zio, E.</strong>", `<a href="https://dx.doi.org/10.1/a">dx.doi.org/10.1/a</a>`} {
		if !strings.Contains(html, want) {
			t.Fatalf("missing %q in %q", want, html)
		}
	}
	tabbed, err := WithNewTab(html)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(tabbed, `target="_blank"`) || strings.Contains(tabbed, "<body>") {
		t.Fatalf("WithNewTab = %q", tabbed)
	}
}

func TestFilterTypesAndSummary(t *testing.T) {
	journals := FilterTypes(sample(), JournalTypes...)
	if len(journals) != 2 || journals[0].DOI != "10.1/a" || journals[1].DOI != "10.1/c" {
		t.Fatalf("journals: %+v", journals)
	}
	got := TypeSummary(sample())
	want := []TypeCount{{"book", 1}, {"journal-article", 1}, {"proceedings-article", 1}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("TypeSummary = %v", got)
	}
}

func TestWriteAndSubsets(t *testing.T) {
	dir := t.TempDir()
	paths, err := Write(dir, "zio", sample(), Options{NewTab: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 2 {
		t.Fatalf("paths: %v", paths)
	}
	md, _ := os.ReadFile(filepath.Join(dir, "zio.md"))
	if !strings.HasPrefix(string(md), "## 2020") {
		t.Fatalf("md: %q", md)
	}
	paths, err = WriteSubsets(dir, "zio", sample(), DefaultSubsets, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 6 {
		t.Fatalf("subset paths: %v", paths)
	}
	books, err := store.Load(filepath.Join(dir, "zio-books.xlsx"))
	if err != nil || books.Len() != 1 || !books.Contains("10.1/b") {
		t.Fatalf("books: %v %v", books, err)
	}
}
