package pipeline_test

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/veritext/veritext/internal/apperr"
	"github.com/veritext/veritext/internal/checksum"
	"github.com/veritext/veritext/internal/extract"
	"github.com/veritext/veritext/internal/grammar"
	"github.com/veritext/veritext/internal/ignorelist"
	"github.com/veritext/veritext/internal/models"
	"github.com/veritext/veritext/internal/pipeline"
	"github.com/veritext/veritext/internal/plagiarism"
	"github.com/veritext/veritext/internal/storage"
	"github.com/veritext/veritext/internal/store"
	"github.com/veritext/veritext/internal/testutil"
)

// essayText trips the spelling rule ("teh") and overlaps the test corpus.
const essayText = "This is teh first sentence here. The cat sat on the mat."

type env struct {
	svc    *pipeline.Service
	db     *store.DB
	files  storage.Provider
	lists  *ignorelist.Service
	events []string
}

func newEnv(t *testing.T, engine grammar.Engine) *env {
	t.Helper()
	return newEnvTimeout(t, engine, 5*time.Second)
}

func newEnvTimeout(t *testing.T, engine grammar.Engine, stageTimeout time.Duration) *env {
	t.Helper()
	e := &env{db: testutil.TestDB(t)}
	_, e.files = testutil.TestUploads(t)
	refs := testutil.TestCorpus(t, map[string]string{"ref1": "The cat sat on the mat"})
	e.lists = ignorelist.NewService(e.db)
	if engine == nil {
		engine = grammar.NewRuleEngine()
	}
	e.svc = pipeline.NewService(
		e.db, e.files, extract.NewPlainText(), engine,
		plagiarism.NewDetector(0.70, 10, 4), refs, e.lists,
		stageTimeout,
		func(kind, _ string, _ models.EssayStatus) { e.events = append(e.events, kind) },
	)
	return e
}

func (e *env) upload(t *testing.T) *pipeline.EssayDetail {
	t.Helper()
	detail, err := e.svc.Upload(context.Background(), "alice", "essay.txt", "txt", "My Essay", []byte(essayText))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	return detail
}

type failingEngine struct {
	failures int
	inner    grammar.Engine
}

func (f *failingEngine) Check(ctx context.Context, text string, ignore []string) ([]grammar.Match, error) {
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("engine unavailable")
	}
	return f.inner.Check(ctx, text, ignore)
}

// stalledEngine never returns until its context expires.
type stalledEngine struct{}

func (stalledEngine) Check(ctx context.Context, _ string, _ []string) ([]grammar.Match, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestUpload(t *testing.T) {
	e := newEnv(t, nil)
	detail := e.upload(t)

	if detail.Status != models.StatusUploaded {
		t.Errorf("status = %s, want UPLOADED", detail.Status)
	}
	if detail.OriginalContent != essayText || detail.ProcessedContent != essayText {
		t.Errorf("content not captured: %+v", detail.Essay)
	}
	if detail.Checksum != checksum.SumString(essayText) {
		t.Errorf("checksum = %q", detail.Checksum)
	}
	if !strings.HasSuffix(detail.FileName, "_essay.txt") {
		t.Errorf("stored name = %q, want timestamped original name", detail.FileName)
	}
	if raw, err := e.files.Read(detail.FileName); err != nil || string(raw) != essayText {
		t.Errorf("stored file read = %q, %v", raw, err)
	}

	entries, err := e.svc.GetHistory(context.Background(), detail.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("history = %d entries, want 1", len(entries))
	}
	if entries[0].ChangeDescription != "Initial file upload" || entries[0].ChangeType != models.ChangeManualEdit {
		t.Errorf("initial entry = %+v", entries[0])
	}
	if entries[0].PreviousContent != "" || entries[0].NewContent != essayText {
		t.Errorf("initial entry content: %+v", entries[0])
	}
}

func TestUpload_UnsupportedType(t *testing.T) {
	e := newEnv(t, nil)
	_, err := e.svc.Upload(context.Background(), "alice", "essay.pdf", "", "", []byte("%PDF-1.4"))
	if !errors.Is(err, apperr.ErrUnsupportedFileType) {
		t.Fatalf("err = %v, want ErrUnsupportedFileType", err)
	}
	essays, err := e.svc.ListByOwner(context.Background(), "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(essays) != 0 {
		t.Errorf("rejected upload left state behind: %+v", essays)
	}
}

func TestUpload_InvalidEncoding(t *testing.T) {
	e := newEnv(t, nil)
	_, err := e.svc.Upload(context.Background(), "alice", "essay.txt", "txt", "", []byte{0xff, 0xfe, 0xfd})
	if !errors.Is(err, apperr.ErrExtractionFailure) {
		t.Fatalf("err = %v, want ErrExtractionFailure", err)
	}
}

func TestUpload_MissingOwner(t *testing.T) {
	e := newEnv(t, nil)
	if _, err := e.svc.Upload(context.Background(), "", "essay.txt", "txt", "", []byte("hi")); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestProcess_Completes(t *testing.T) {
	e := newEnv(t, nil)
	detail := e.upload(t)
	e.events = nil

	done, err := e.svc.Process(context.Background(), detail.ID, "")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if done.Status != models.StatusCompleted {
		t.Errorf("status = %s, want COMPLETED", done.Status)
	}

	grammarFindings, err := e.svc.GetGrammarFindings(context.Background(), detail.ID)
	if err != nil {
		t.Fatal(err)
	}
	var spelled bool
	for _, f := range grammarFindings {
		if f.RuleID == "MORFOLOGIK_RULE_EN" && f.ErrorText == "teh" {
			spelled = true
		}
	}
	if !spelled {
		t.Errorf("no spelling finding for teh: %+v", grammarFindings)
	}

	plag, err := e.svc.GetPlagiarismFindings(context.Background(), detail.ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(plag) == 0 {
		t.Fatal("expected plagiarism findings")
	}
	f := plag[0]
	if f.MatchedText != "The cat sat on the mat." {
		t.Errorf("matched text = %q", f.MatchedText)
	}
	if f.StartPosition != strings.Index(essayText, f.MatchedText) {
		t.Errorf("start = %d", f.StartPosition)
	}
	if f.SimilarityScore <= 0.70 {
		t.Errorf("score = %f, want > 0.70", f.SimilarityScore)
	}

	want := []string{"processing", "stage", "stage", "completed"}
	if !reflect.DeepEqual(e.events, want) {
		t.Errorf("events = %v, want %v", e.events, want)
	}
}

func TestProcess_ReprocessSupersedesFindings(t *testing.T) {
	e := newEnv(t, nil)
	detail := e.upload(t)

	if _, err := e.svc.Process(context.Background(), detail.ID, ""); err != nil {
		t.Fatal(err)
	}
	first, err := e.svc.GetGrammarFindings(context.Background(), detail.ID)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := e.svc.Process(context.Background(), detail.ID, ""); err != nil {
		t.Fatalf("reprocess: %v", err)
	}
	second, err := e.svc.GetGrammarFindings(context.Background(), detail.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(second) != len(first) {
		t.Errorf("reprocess accumulated findings: %d then %d", len(first), len(second))
	}
}

func TestProcess_RejectsRunInFlight(t *testing.T) {
	e := newEnv(t, nil)
	detail := e.upload(t)
	if err := e.db.UpdateEssayStatus(detail.ID, models.StatusProcessing); err != nil {
		t.Fatal(err)
	}

	if _, err := e.svc.Process(context.Background(), detail.ID, ""); err == nil {
		t.Fatal("expected invalid transition error")
	}
	got, err := e.svc.Get(context.Background(), detail.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.StatusProcessing {
		t.Errorf("status = %s, rejection must not change it", got.Status)
	}
}

func TestProcess_StageFailureMarksError(t *testing.T) {
	e := newEnv(t, &failingEngine{failures: 1, inner: grammar.NewRuleEngine()})
	detail := e.upload(t)
	e.events = nil

	_, err := e.svc.Process(context.Background(), detail.ID, "")
	if err == nil {
		t.Fatal("expected stage failure")
	}
	var stageErr *apperr.StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("err = %v, want StageError", err)
	}
	if stageErr.Stage != pipeline.StageGrammarCheck {
		t.Errorf("stage = %q, want %q", stageErr.Stage, pipeline.StageGrammarCheck)
	}

	got, err := e.svc.Get(context.Background(), detail.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.StatusError {
		t.Errorf("status = %s, want ERROR", got.Status)
	}

	plag, err := e.svc.GetPlagiarismFindings(context.Background(), detail.ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(plag) != 0 {
		t.Errorf("later stage ran after failure: %+v", plag)
	}

	want := []string{"processing", "error"}
	if !reflect.DeepEqual(e.events, want) {
		t.Errorf("events = %v, want %v", e.events, want)
	}
}

func TestProcess_StageDeadlineMarksError(t *testing.T) {
	e := newEnvTimeout(t, stalledEngine{}, 50*time.Millisecond)
	detail := e.upload(t)
	e.events = nil

	_, err := e.svc.Process(context.Background(), detail.ID, "")
	var stageErr *apperr.StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != pipeline.StageGrammarCheck {
		t.Fatalf("err = %v, want StageError in %q", err, pipeline.StageGrammarCheck)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}

	got, err := e.svc.Get(context.Background(), detail.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.StatusError {
		t.Errorf("status = %s, want ERROR", got.Status)
	}
	want := []string{"processing", "error"}
	if !reflect.DeepEqual(e.events, want) {
		t.Errorf("events = %v, want %v", e.events, want)
	}
}

func TestProcess_ErroredEssayCanReprocess(t *testing.T) {
	e := newEnv(t, &failingEngine{failures: 1, inner: grammar.NewRuleEngine()})
	detail := e.upload(t)

	if _, err := e.svc.Process(context.Background(), detail.ID, ""); err == nil {
		t.Fatal("expected first run to fail")
	}
	done, err := e.svc.Process(context.Background(), detail.ID, "")
	if err != nil {
		t.Fatalf("reprocess after error: %v", err)
	}
	if done.Status != models.StatusCompleted {
		t.Errorf("status = %s, want COMPLETED", done.Status)
	}
}

func TestProcess_IgnoreListSuppressesSpelling(t *testing.T) {
	e := newEnv(t, nil)
	detail := e.upload(t)

	list, err := e.lists.Create("alice", "custom", "teh", false)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.svc.Process(context.Background(), detail.ID, list.ID); err != nil {
		t.Fatalf("Process: %v", err)
	}

	findings, err := e.svc.GetGrammarFindings(context.Background(), detail.ID)
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range findings {
		if f.RuleID == "MORFOLOGIK_RULE_EN" {
			t.Errorf("ignored word still reported: %+v", f)
		}
	}
}

func TestProcess_UnknownIgnoreList(t *testing.T) {
	e := newEnv(t, nil)
	detail := e.upload(t)

	_, err := e.svc.Process(context.Background(), detail.ID, "missing")
	var stageErr *apperr.StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != pipeline.StageIgnoreWords {
		t.Fatalf("err = %v, want StageError in %q", err, pipeline.StageIgnoreWords)
	}
	got, err := e.svc.Get(context.Background(), detail.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.StatusError {
		t.Errorf("status = %s, want ERROR", got.Status)
	}
}

func TestProcess_UnknownEssay(t *testing.T) {
	e := newEnv(t, nil)
	if _, err := e.svc.Process(context.Background(), "missing", ""); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateContent_AppendsLedgerEntry(t *testing.T) {
	e := newEnv(t, nil)
	detail := e.upload(t)

	edited := "This is the first sentence here. The dog sat on the rug."
	updated, err := e.svc.UpdateContent(context.Background(), detail.ID, edited, "fixed spelling", "")
	if err != nil {
		t.Fatalf("UpdateContent: %v", err)
	}
	if updated.ProcessedContent != edited {
		t.Errorf("processed = %q", updated.ProcessedContent)
	}
	if updated.OriginalContent != essayText {
		t.Errorf("original content changed: %q", updated.OriginalContent)
	}
	if updated.Checksum != checksum.SumString(edited) {
		t.Errorf("checksum = %q, want checksum of new content", updated.Checksum)
	}

	entries, err := e.svc.GetHistory(context.Background(), detail.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("history = %d entries, want 2", len(entries))
	}
	latest := entries[0]
	if latest.ChangeType != models.ChangeManualEdit || latest.ChangeDescription != "fixed spelling" {
		t.Errorf("latest entry = %+v", latest)
	}
	if latest.PreviousContent != essayText || latest.NewContent != edited {
		t.Errorf("lineage wrong: %+v", latest)
	}
}

func TestUpdateContent_ChecksumGuard(t *testing.T) {
	e := newEnv(t, nil)
	detail := e.upload(t)

	if _, err := e.svc.UpdateContent(context.Background(), detail.ID, "new", "", "stale-checksum"); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("stale checksum err = %v, want ErrConflict", err)
	}
	if _, err := e.svc.UpdateContent(context.Background(), detail.ID, "new", "", detail.Checksum); err != nil {
		t.Fatalf("matching checksum: %v", err)
	}
}

func TestUpdateContent_EmptyContent(t *testing.T) {
	e := newEnv(t, nil)
	detail := e.upload(t)
	if _, err := e.svc.UpdateContent(context.Background(), detail.ID, "", "", ""); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestDelete(t *testing.T) {
	e := newEnv(t, nil)
	detail := e.upload(t)

	if err := e.svc.Delete(context.Background(), detail.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := e.svc.Get(context.Background(), detail.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if _, err := e.files.Read(detail.FileName); err == nil {
		t.Errorf("stored upload %q survived essay delete", detail.FileName)
	}
}

func TestDelete_Unknown(t *testing.T) {
	e := newEnv(t, nil)
	if err := e.svc.Delete(context.Background(), "missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMarkFixed_Unknown(t *testing.T) {
	e := newEnv(t, nil)
	if err := e.svc.MarkFixed(context.Background(), "missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestGetHistory_UnknownEssay(t *testing.T) {
	e := newEnv(t, nil)
	if _, err := e.svc.GetHistory(context.Background(), "missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
