package utils

import (
	"errors"
	"sync"
)

// Task is a unit of startup work that can run alongside others.
type Task func() error

// RunParallel executes every task concurrently and returns their joined errors.
func RunParallel(tasks ...Task) error {
	var wg sync.WaitGroup
	errs := make([]error, len(tasks))

	wg.Add(len(tasks))
	for i, task := range tasks {
		go func(index int, t Task) {
			defer wg.Done()
			errs[index] = t()
		}(i, task)
	}

	wg.Wait()
	return errors.Join(errs...)
}
