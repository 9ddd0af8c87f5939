package fsmutil

import "testing"

func TestAcquire(t *testing.T) {
	const chat = 777
	release, _, ok := Acquire(chat, "ledger_report")
	if !ok {
		t.Fatal("first Acquire must succeed")
	}
	if _, cur, ok := Acquire(chat, "my_points_xlsx"); ok || cur != "ledger_report" {
		t.Fatalf("busy chat: ok=%v current=%q", ok, cur)
	}
	other, _, ok := Acquire(chat+1, "ledger_report")
	if !ok {
		t.Fatal("other chats must not be blocked")
	}
	other()
	release()
	release()

	again, _, ok := Acquire(chat, "my_points_xlsx")
	if !ok {
		t.Fatal("chat not released")
	}
	again()
}

func TestIsCancelText(t *testing.T) {
	for _, s := range []string{"cancel", " /CANCEL ", "Batal"} {
		if !IsCancelText(s) {
			t.Errorf("%q should cancel", s)
		}
	}
	if IsCancelText("wrong form attached") {
		t.Error("reason text treated as cancel")
	}
}
