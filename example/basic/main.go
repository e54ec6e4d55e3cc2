package main

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/yudhasubki/spinlock"
)

type account struct {
	mtx     spinlock.Lock
	balance int
}

func (a *account) deposit(amount int) {
	a.mtx.Lock()
	a.balance += amount
	a.mtx.Unlock()
}

func main() {
	var (
		acc     account
		workers = runtime.NumCPU()
		wg      sync.WaitGroup
	)

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				acc.deposit(1)
			}
		}()
	}
	wg.Wait()

	acc.mtx.Lock()
	fmt.Printf("balance %d, expected %d\n", acc.balance, workers*1000)
	acc.mtx.Unlock()
}
