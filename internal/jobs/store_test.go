package jobs_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/willhenshall/hls-transcoder/internal/jobs"
	"github.com/willhenshall/hls-transcoder/internal/testsupport"
)

func fileStatus(s jobs.FileStatus) *jobs.FileStatus { return &s }
func strPtr(s string) *string                       { return &s }
func intPtr(i int) *int                             { return &i }

func TestCreateAndGet(t *testing.T) {
	store := testsupport.MustOpenStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, "job-1", []string{"a.mp3", "b.wav"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Status != jobs.StatusPending {
		t.Fatalf("status = %q, want pending", created.Status)
	}
	if len(created.Files) != 2 {
		t.Fatalf("files = %d, want 2", len(created.Files))
	}
	if created.Files[0].Name != "a.mp3" || created.Files[1].Name != "b.wav" {
		t.Fatalf("file order = %q, %q", created.Files[0].Name, created.Files[1].Name)
	}
	for _, file := range created.Files {
		if file.Status != jobs.FilePending {
			t.Fatalf("file %s status = %q, want pending", file.Name, file.Status)
		}
	}

	got, err := store.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.CompletedFiles != 0 || got.FailedFiles != 0 {
		t.Fatalf("counters = %d/%d, want 0/0", got.CompletedFiles, got.FailedFiles)
	}
	if got.CompletedAt != nil {
		t.Fatalf("CompletedAt = %v, want nil", got.CompletedAt)
	}
}

func TestCreateRejectsDuplicates(t *testing.T) {
	store := testsupport.MustOpenStore(t)
	ctx := context.Background()

	if _, err := store.Create(ctx, "job-1", []string{"a.mp3"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := store.Create(ctx, "job-1", []string{"b.mp3"}); !errors.Is(err, jobs.ErrDuplicateJob) {
		t.Fatalf("duplicate id error = %v, want ErrDuplicateJob", err)
	}
	if _, err := store.Create(ctx, "job-2", []string{"a.mp3", "a.mp3"}); !errors.Is(err, jobs.ErrDuplicateFileName) {
		t.Fatalf("duplicate name error = %v, want ErrDuplicateFileName", err)
	}
	if _, err := store.Get(ctx, "job-2"); !errors.Is(err, jobs.ErrNotFound) {
		t.Fatalf("rejected job should not exist, got %v", err)
	}
}

func TestGetNotFound(t *testing.T) {
	store := testsupport.MustOpenStore(t)

	if _, err := store.Get(context.Background(), "missing"); !errors.Is(err, jobs.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateFileRecountsAggregates(t *testing.T) {
	store := testsupport.MustOpenStore(t)
	ctx := context.Background()

	if _, err := store.Create(ctx, "job-1", []string{"a.mp3", "b.mp3", "c.mp3"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := store.UpdateFile(ctx, "job-1", "a.mp3", jobs.FileUpdate{
		Status:       fileStatus(jobs.FileCompleted),
		PackageDir:   strPtr("a"),
		SegmentCount: intPtr(12),
	}); err != nil {
		t.Fatalf("UpdateFile a: %v", err)
	}
	if err := store.UpdateFile(ctx, "job-1", "b.mp3", jobs.FileUpdate{
		Status:       fileStatus(jobs.FileFailed),
		ErrorMessage: strPtr("encode exploded"),
	}); err != nil {
		t.Fatalf("UpdateFile b: %v", err)
	}

	job, err := store.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if job.CompletedFiles != 1 || job.FailedFiles != 1 {
		t.Fatalf("counters = %d/%d, want 1/1", job.CompletedFiles, job.FailedFiles)
	}
	if job.Files[0].PackageDir != "a" || job.Files[0].SegmentCount != 12 {
		t.Fatalf("file a = %+v", job.Files[0])
	}
	if job.Files[1].ErrorMessage != "encode exploded" {
		t.Fatalf("file b error = %q", job.Files[1].ErrorMessage)
	}
	if job.Files[2].Status != jobs.FilePending {
		t.Fatalf("file c status = %q, want pending", job.Files[2].Status)
	}

	// Overwriting a failed file back to completed must re-derive both
	// counters rather than increment.
	if err := store.UpdateFile(ctx, "job-1", "b.mp3", jobs.FileUpdate{
		Status: fileStatus(jobs.FileCompleted),
	}); err != nil {
		t.Fatalf("UpdateFile b again: %v", err)
	}
	job, err = store.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if job.CompletedFiles != 2 || job.FailedFiles != 0 {
		t.Fatalf("counters = %d/%d, want 2/0", job.CompletedFiles, job.FailedFiles)
	}
}

func TestUpdateFileMissingIsNoOp(t *testing.T) {
	store := testsupport.MustOpenStore(t)
	ctx := context.Background()

	if err := store.UpdateFile(ctx, "ghost", "a.mp3", jobs.FileUpdate{
		Status: fileStatus(jobs.FileCompleted),
	}); err != nil {
		t.Fatalf("UpdateFile on missing job: %v", err)
	}
	if _, err := store.Get(ctx, "ghost"); !errors.Is(err, jobs.ErrNotFound) {
		t.Fatalf("no-op update must not create the job, got %v", err)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	store := testsupport.MustOpenStore(t)
	ctx := context.Background()

	if _, err := store.Create(ctx, "job-1", []string{"a.mp3"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Delete(ctx, "job-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, "job-1"); !errors.Is(err, jobs.ErrNotFound) {
		t.Fatalf("deleted job still readable: %v", err)
	}
	if err := store.Delete(ctx, "job-1"); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
}

func TestFinishIsFinal(t *testing.T) {
	store := testsupport.MustOpenStore(t)
	ctx := context.Background()

	if _, err := store.Create(ctx, "job-1", []string{"a.mp3"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.MarkProcessing(ctx, "job-1"); err != nil {
		t.Fatalf("MarkProcessing: %v", err)
	}
	if err := store.Finish(ctx, "job-1", jobs.StatusCompleted, "/tmp/bundle.zip", ""); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	job, err := store.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if job.Status != jobs.StatusCompleted {
		t.Fatalf("status = %q, want completed", job.Status)
	}
	if job.ArchivePath != "/tmp/bundle.zip" {
		t.Fatalf("archive path = %q", job.ArchivePath)
	}
	if job.CompletedAt == nil {
		t.Fatal("CompletedAt not set")
	}

	// A second settle attempt must not overwrite the terminal state.
	if err := store.Finish(ctx, "job-1", jobs.StatusFailed, "", "late failure"); err != nil {
		t.Fatalf("second Finish: %v", err)
	}
	job, err = store.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if job.Status != jobs.StatusCompleted || job.ErrorMessage != "" {
		t.Fatalf("terminal state overwritten: %q / %q", job.Status, job.ErrorMessage)
	}
}

func TestFinishRejectsNonTerminalStatus(t *testing.T) {
	store := testsupport.MustOpenStore(t)
	ctx := context.Background()

	if _, err := store.Create(ctx, "job-1", []string{"a.mp3"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Finish(ctx, "job-1", jobs.StatusProcessing, "", ""); err == nil {
		t.Fatal("Finish accepted a non-terminal status")
	}
}

func TestListFiltersAndOrders(t *testing.T) {
	store := testsupport.MustOpenStore(t)
	ctx := context.Background()

	for _, id := range []string{"job-1", "job-2", "job-3"} {
		if _, err := store.Create(ctx, id, []string{"a.mp3"}); err != nil {
			t.Fatalf("Create %s: %v", id, err)
		}
		time.Sleep(2 * time.Millisecond)
	}
	if err := store.MarkProcessing(ctx, "job-2"); err != nil {
		t.Fatalf("MarkProcessing: %v", err)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("jobs = %d, want 3", len(all))
	}
	if all[0].ID != "job-3" || all[2].ID != "job-1" {
		t.Fatalf("order = %s..%s, want newest first", all[0].ID, all[2].ID)
	}

	pending, err := store.List(ctx, jobs.StatusPending)
	if err != nil {
		t.Fatalf("List pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("pending = %d, want 2", len(pending))
	}
}

func TestSweepReturnsExpiredSnapshots(t *testing.T) {
	store := testsupport.MustOpenStore(t)
	ctx := context.Background()

	if _, err := store.Create(ctx, "old", []string{"a.mp3"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	removed, err := store.Sweep(ctx, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if len(removed) != 1 || removed[0].ID != "old" {
		t.Fatalf("removed = %+v, want [old]", removed)
	}
	if len(removed[0].Files) != 1 {
		t.Fatalf("snapshot lost file rows: %+v", removed[0])
	}
	if _, err := store.Get(ctx, "old"); !errors.Is(err, jobs.ErrNotFound) {
		t.Fatalf("swept job still readable: %v", err)
	}

	if _, err := store.Create(ctx, "fresh", []string{"a.mp3"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	removed, err = store.Sweep(ctx, time.Hour)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if len(removed) != 0 {
		t.Fatalf("fresh job swept: %+v", removed)
	}
}

func TestStats(t *testing.T) {
	store := testsupport.MustOpenStore(t)
	ctx := context.Background()

	for _, id := range []string{"job-1", "job-2"} {
		if _, err := store.Create(ctx, id, []string{"a.mp3"}); err != nil {
			t.Fatalf("Create %s: %v", id, err)
		}
	}
	if err := store.MarkProcessing(ctx, "job-2"); err != nil {
		t.Fatalf("MarkProcessing: %v", err)
	}
	if err := store.Finish(ctx, "job-2", jobs.StatusFailed, "", "boom"); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats[jobs.StatusPending] != 1 || stats[jobs.StatusFailed] != 1 {
		t.Fatalf("stats = %v", stats)
	}
}
