package keyring

import (
	"errors"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestSaveGetDelete(t *testing.T) {
	keyring.MockInit()

	if HasPassword("work") {
		t.Fatal("Keyring should start empty")
	}
	if _, err := GetPassword("work"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	if err := SavePassword("work", []byte("hunter2")); err != nil {
		t.Fatalf("SavePassword failed: %v", err)
	}
	if !HasPassword("work") {
		t.Error("Password should be stored")
	}
	got, err := GetPassword("work")
	if err != nil {
		t.Fatalf("GetPassword failed: %v", err)
	}
	if string(got) != "hunter2" {
		t.Errorf("Expected stored password, got %q", got)
	}

	if err := DeletePassword("work"); err != nil {
		t.Fatalf("DeletePassword failed: %v", err)
	}
	if HasPassword("work") {
		t.Error("Password should be deleted")
	}
	if err := DeletePassword("work"); err != nil {
		t.Errorf("Deleting a missing password should succeed, got %v", err)
	}
}

func TestDefaultAccount(t *testing.T) {
	keyring.MockInit()

	if err := SavePassword("", []byte("pw")); err != nil {
		t.Fatal(err)
	}
	if !HasPassword(DefaultAccount) {
		t.Error("Empty account name should map to the default account")
	}
}
