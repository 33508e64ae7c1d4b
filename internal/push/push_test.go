package push

import "testing"

func TestCoalescerAbsorbsBursts(t *testing.T) {
	c := NewCoalescer()
	for i := 0; i < 10; i++ {
		c.Signal()
	}

	select {
	case <-c.Wait():
	default:
		t.Fatalf("expected one pending signal")
	}
	select {
	case <-c.Wait():
		t.Fatalf("burst was not coalesced into one signal")
	default:
	}
}

func TestCoalescerSignalAfterDrain(t *testing.T) {
	c := NewCoalescer()
	c.Signal()
	<-c.Wait()

	c.Signal()
	select {
	case <-c.Wait():
	default:
		t.Fatalf("signal after drain was lost")
	}
}
