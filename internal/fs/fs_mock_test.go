package fs

import "testing"

func TestMockFSReadFile(t *testing.T) {
	m := NewMockFS(map[string]string{
		"/app/package.json": `{"name":"app"}`,
	})
	b, err := m.ReadFile("/app/package.json")
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"name":"app"}` {
		t.Fatalf("got %q", b)
	}
}

func TestMockFSReadDir(t *testing.T) {
	m := NewMockFS(map[string]string{
		"/app/src/index.ts": "export {}",
		"/app/package.json": "{}",
	})
	entries, err := m.ReadDir("/app")
	if err != nil {
		t.Fatal(err)
	}
	names := map[string]EntryKind{}
	for _, e := range entries {
		names[e.Name] = e.Kind
	}
	if names["src"] != DirEntry {
		t.Fatalf("expected src to be a directory, got %+v", names)
	}
	if names["package.json"] != FileEntry {
		t.Fatalf("expected package.json to be a file, got %+v", names)
	}
}

func TestMockFSSymlink(t *testing.T) {
	m := NewMockFS(map[string]string{"/app/real.ts": "x"})
	m.AddSymlink("/app/link.ts", "./real.ts")
	target, err := m.ReadLink("/app/link.ts")
	if err != nil || target != "./real.ts" {
		t.Fatalf("got %q %v", target, err)
	}
}

func TestMockFSNotFound(t *testing.T) {
	m := NewMockFS(nil)
	if _, err := m.ReadFile("/nope"); err == nil {
		t.Fatalf("expected error")
	}
}
