package main

import (
	"net"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{DisableStartupMessage: true})
}

func TestServeReturnsListenError(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen() error = %v", err)
	}
	defer taken.Close()

	done := make(chan error, 1)
	go func() { done <- serve(newTestApp(), taken.Addr().String(), make(chan os.Signal)) }()

	select {
	case err := <-done:
		if err == nil {
			t.Error("serve() = nil, want the listen error")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve() kept running after the address was refused")
	}
}

func TestServeShutsDownOnSignal(t *testing.T) {
	free, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen() error = %v", err)
	}
	addr := free.Addr().String()
	free.Close()

	quit := make(chan os.Signal, 1)
	done := make(chan error, 1)
	go func() { done <- serve(newTestApp(), addr, quit) }()

	deadline := time.Now().Add(5 * time.Second)
	for {
		conn, err := net.Dial("tcp", addr)
		if err == nil {
			conn.Close()
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server never accepted on %s: %v", addr, err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	quit <- syscall.SIGTERM
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("serve() error = %v, want nil after a signal", err)
		}
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("serve() did not return after a signal")
	}
}
