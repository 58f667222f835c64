package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel string, size int) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
	require.NoError(t, os.WriteFile(full, make([]byte, size), 0644))
}

func newTestService(t *testing.T) (*FileService, string) {
	t.Helper()
	root := t.TempDir()
	svc, err := NewFileService(&Config{DataDir: root, AllowedExtensions: genomicExtensions})
	require.NoError(t, err)
	return svc, root
}

func TestNewFileService(t *testing.T) {
	_, err := NewFileService(nil)
	assert.Error(t, err)

	dir := filepath.Join(t.TempDir(), "nested", "data")
	svc, err := NewFileService(&Config{DataDir: dir})
	require.NoError(t, err)
	assert.DirExists(t, dir)
	assert.True(t, filepath.IsAbs(svc.Root()))
}

func TestFileService_Resolve(t *testing.T) {
	svc, root := newTestService(t)

	tests := []struct {
		name    string
		rel     string
		want    string
		wantErr bool
	}{
		{name: "root", rel: "", want: root},
		{name: "nested file", rel: "sub/a.bam", want: filepath.Join(root, "sub", "a.bam")},
		{name: "dot segments inside root", rel: "sub/../a.bam", want: filepath.Join(root, "a.bam")},
		{name: "parent escape", rel: "../../etc/passwd", wantErr: true},
		{name: "escape after descent", rel: "sub/../../x.bam", wantErr: true},
		{name: "parent only", rel: "..", wantErr: true},
		{name: "sibling sharing prefix", rel: "../" + filepath.Base(root) + "-evil/a.bam", wantErr: true},
		{name: "nul byte", rel: "a\x00.bam", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Resolve(tt.rel)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrForbidden)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFileService_ListFiles(t *testing.T) {
	svc, root := newTestService(t)
	writeFile(t, root, "a.bam", 100)
	writeFile(t, root, "a.bam.bai", 10)
	writeFile(t, root, "notes.txt", 5)
	writeFile(t, root, "sub1/calls.vcf.gz", 50)
	writeFile(t, root, "sub1/deeper/peaks.bed", 20)
	writeFile(t, root, "sub1/deeper/readme.md", 20)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty"), 0755))

	entries, err := svc.ListFiles()
	require.NoError(t, err)

	byPath := make(map[string]FileEntry, len(entries))
	for _, e := range entries {
		byPath[e.Path] = e
	}
	assert.Len(t, entries, 7)
	assert.Contains(t, byPath, "sub1")
	assert.Contains(t, byPath, "sub1/deeper")
	assert.Contains(t, byPath, "empty")
	assert.NotContains(t, byPath, "notes.txt")
	assert.NotContains(t, byPath, "sub1/deeper/readme.md")

	dir := byPath["sub1"]
	assert.Equal(t, TypeDirectory, dir.Type)
	assert.Zero(t, dir.Size)
	assert.Nil(t, dir.Modified)

	file := byPath["sub1/deeper/peaks.bed"]
	assert.Equal(t, TypeFile, file.Type)
	assert.Equal(t, "peaks.bed", file.Name)
	assert.Equal(t, int64(20), file.Size)
	assert.NotNil(t, file.Modified)

	var total int64
	for _, e := range entries {
		total += e.Size
	}
	again, err := svc.ListFiles()
	require.NoError(t, err)
	var totalAgain int64
	for _, e := range again {
		totalAgain += e.Size
	}
	assert.Len(t, again, len(entries))
	assert.Equal(t, total, totalAgain)
}

func TestFileService_ListFilesDoesNotFollowDirectorySymlinks(t *testing.T) {
	svc, root := newTestService(t)
	writeFile(t, root, "sub/a.bam", 10)
	// A cycle back to the root
	if err := os.Symlink(root, filepath.Join(root, "sub", "loop")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	outside := t.TempDir()
	writeFile(t, outside, "linked.bam", 30)
	require.NoError(t, os.Symlink(filepath.Join(outside, "linked.bam"), filepath.Join(root, "linked.bam")))
	require.NoError(t, os.Symlink(filepath.Join(outside, "missing.bam"), filepath.Join(root, "broken.bam")))

	entries, err := svc.ListFiles()
	require.NoError(t, err)

	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		paths = append(paths, e.Path)
	}
	assert.ElementsMatch(t, []string{"sub", "sub/a.bam", "sub/loop", "linked.bam"}, paths)
}

func TestFileService_ListFilesSkipsUnreadableSubtree(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}
	svc, root := newTestService(t)
	writeFile(t, root, "ok/a.bam", 1)
	writeFile(t, root, "locked/b.bam", 1)
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Chmod(locked, 0))
	t.Cleanup(func() { _ = os.Chmod(locked, 0755) })

	entries, err := svc.ListFiles()
	require.NoError(t, err)

	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		paths = append(paths, e.Path)
	}
	assert.ElementsMatch(t, []string{"ok", "ok/a.bam", "locked"}, paths)
}

func TestFileService_Browse(t *testing.T) {
	svc, root := newTestService(t)
	writeFile(t, root, "sub1/a.bam", 10)
	writeFile(t, root, "sub1/a.bam.bai", 1)
	writeFile(t, root, "sub1/notes.txt", 1)
	writeFile(t, root, "sub1/inner/x.vcf", 1)
	writeFile(t, root, "top.bam", 1)

	items, err := svc.Browse("sub1")
	require.NoError(t, err)
	names := make([]string, 0, len(items))
	for _, it := range items {
		assert.True(t, it.Allowed)
		names = append(names, it.Path)
	}
	assert.ElementsMatch(t, []string{"sub1/a.bam", "sub1/a.bam.bai", "sub1/inner"}, names)

	items, err = svc.Browse("")
	require.NoError(t, err)
	assert.Len(t, items, 2)

	_, err = svc.Browse("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Browse("top.bam")
	assert.ErrorIs(t, err, ErrNotDirectory)

	_, err = svc.Browse("../..")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestFileService_OpenFile(t *testing.T) {
	svc, root := newTestService(t)
	writeFile(t, root, "a.bam", 42)
	writeFile(t, root, "notes.txt", 1)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "dir.bam"), 0755))

	f, info, err := svc.OpenFile("a.bam")
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, int64(42), info.Size())

	_, _, err = svc.OpenFile("missing.bam")
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = svc.OpenFile("dir.bam")
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = svc.OpenFile("notes.txt")
	assert.ErrorIs(t, err, ErrForbidden)

	_, _, err = svc.OpenFile("../../etc/passwd")
	assert.ErrorIs(t, err, ErrForbidden)

	assert.True(t, svc.Exists("a.bam"))
	assert.False(t, svc.Exists("a.bam.bai"))
}

func TestFileService_ListGenomes(t *testing.T) {
	svc, root := newTestService(t)
	writeFile(t, root, "ref/hg38.fa", 10)
	writeFile(t, root, "ref/hg38.fa.fai", 1)
	writeFile(t, root, "ref/mm10.FASTA", 10)
	writeFile(t, root, "reads.bam", 1)

	genomes, err := svc.ListGenomes()
	require.NoError(t, err)
	require.Len(t, genomes, 2)

	byName := make(map[string]Genome)
	for _, g := range genomes {
		byName[g.DisplayName] = g
	}
	assert.Equal(t, Genome{Name: "hg38.fa", DisplayName: "hg38", Path: "ref/hg38.fa", HasIndex: true}, byName["hg38"])
	assert.Equal(t, Genome{Name: "mm10.FASTA", DisplayName: "mm10", Path: "ref/mm10.FASTA", HasIndex: false}, byName["mm10"])
}
