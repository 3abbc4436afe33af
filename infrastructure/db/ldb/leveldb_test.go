package ldb

import (
	"bytes"
	"testing"
)

func TestInMemoryLevelDB(t *testing.T) {
	db, err := NewInMemoryLevelDB()
	if err != nil {
		t.Fatalf("NewInMemoryLevelDB: %+v", err)
	}
	defer func() {
		err := db.Close()
		if err != nil {
			t.Fatalf("Close: %+v", err)
		}
	}()

	value, err := db.Get([]byte("missing"))
	if err != nil {
		t.Fatalf("Get: %+v", err)
	}
	if value != nil {
		t.Fatalf("TestInMemoryLevelDB: got %x for a missing key, want nil", value)
	}

	for _, key := range []string{"a/1", "a/2", "b/1"} {
		err = db.Put([]byte(key), []byte("value-"+key))
		if err != nil {
			t.Fatalf("Put: %+v", err)
		}
	}

	value, err = db.Get([]byte("a/2"))
	if err != nil {
		t.Fatalf("Get: %+v", err)
	}
	if !bytes.Equal(value, []byte("value-a/2")) {
		t.Fatalf("TestInMemoryLevelDB: got %s, want value-a/2", value)
	}

	count, err := db.CountKeys([]byte("a/"))
	if err != nil {
		t.Fatalf("CountKeys: %+v", err)
	}
	if count != 2 {
		t.Fatalf("TestInMemoryLevelDB: counted %d keys under a/, want 2", count)
	}

	err = db.Delete([]byte("a/1"))
	if err != nil {
		t.Fatalf("Delete: %+v", err)
	}
	has, err := db.Has([]byte("a/1"))
	if err != nil {
		t.Fatalf("Has: %+v", err)
	}
	if has {
		t.Fatalf("TestInMemoryLevelDB: deleted key is still present")
	}
}
