package textbuffer_test

import (
	"testing"

	"github.com/coregx/sed/textbuffer"
)

func TestAddAndRead(t *testing.T) {
	b := textbuffer.New()
	b.Add("hello ")
	b.Add("world")
	if got := b.Read(); got != "hello world" {
		t.Fatalf("Read() = %q, want %q", got, "hello world")
	}
	if b.Len() != 11 {
		t.Fatalf("Len() = %d, want 11", b.Len())
	}
}

func TestGet(t *testing.T) {
	b := textbuffer.NewFromString("joejoe")
	got, err := b.Get(3, 3)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "joe" {
		t.Fatalf("Get = %q, want %q", got, "joe")
	}
}

func TestGetOutOfBoundsFails(t *testing.T) {
	b := textbuffer.NewFromString("joe")
	if _, err := b.Get(2, 5); err == nil {
		t.Fatal("expected a BufferBoundsError")
	}
}

func TestReplace(t *testing.T) {
	b := textbuffer.NewFromString("joejoe")
	if err := b.Replace(0, 3, "bob"); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if got := b.Read(); got != "bobjoe" {
		t.Fatalf("Read() = %q, want %q", got, "bobjoe")
	}
}

func TestReplaceWithLongerTextShiftsLength(t *testing.T) {
	b := textbuffer.NewFromString("joe")
	if err := b.Replace(0, 3, "bobby"); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if got := b.Read(); got != "bobby" {
		t.Fatalf("Read() = %q, want %q", got, "bobby")
	}
}

func TestReplaceOutOfBoundsFails(t *testing.T) {
	b := textbuffer.NewFromString("joe")
	if err := b.Replace(1, 10, "x"); err == nil {
		t.Fatal("expected a BufferBoundsError")
	}
}

func TestConsumeEmptiesBuffer(t *testing.T) {
	b := textbuffer.NewFromString("joe")
	if got := b.Consume(); got != "joe" {
		t.Fatalf("Consume() = %q, want %q", got, "joe")
	}
	if b.Len() != 0 {
		t.Fatalf("Len() after Consume = %d, want 0", b.Len())
	}
}

func TestMultibyteCodePointIndexing(t *testing.T) {
	b := textbuffer.NewFromString("jée") // "jée", é is one code point, two UTF-8 bytes
	if b.Len() != 3 {
		t.Fatalf("Len() = %d, want 3 code points", b.Len())
	}
	got, err := b.Get(1, 1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "é" {
		t.Fatalf("Get(1,1) = %q, want %q", got, "é")
	}
}
