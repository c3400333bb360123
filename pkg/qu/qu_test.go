package qu

import (
	"sync"
	"testing"
	"time"
)

func TestDoubleCloseIsHarmless(t *testing.T) {
	c := T()
	c.Q()
	c.Q()
	if !c.IsClosed() {
		t.Fatal("channel not reported closed")
	}
}

func TestConcurrentClose(t *testing.T) {
	c := T()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Q()
		}()
	}
	wg.Wait()
	if !c.IsClosed() {
		t.Fatal("channel not reported closed")
	}
}

func TestIsClosedKeepsPendingSignal(t *testing.T) {
	c := Ts(1)
	c.Signal()
	if c.IsClosed() {
		t.Fatal("open channel reported closed")
	}
	select {
	case <-c.Wait():
	default:
		t.Fatal("pending signal was consumed")
	}
}

func TestWaitUnblocksOnClose(t *testing.T) {
	c := T()
	done := make(chan struct{})
	go func() {
		<-c.Wait()
		close(done)
	}()
	c.Q()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("waiter still blocked after close")
	}
}

func TestZeroValue(t *testing.T) {
	var c C
	if !c.IsClosed() {
		t.Fatal("zero value should read as closed")
	}
	c.Q()
	c.Signal()
	select {
	case <-c.Wait():
		t.Fatal("zero value channel yielded a value")
	default:
	}
}
