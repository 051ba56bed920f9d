package window

// runOnMain runs loop on a new goroutine while main holds the calling one.
// finished is called once loop returns. When main fails first, stop asks the
// loop to wind down and runOnMain waits for it, so the caller never tears
// down a window the loop is still using.
func runOnMain(main, loop func() error, finished, stop func()) error {
	errc := make(chan error, 1)
	go func() {
		err := loop()
		finished()
		errc <- err
	}()
	if err := main(); err != nil {
		stop()
		<-errc
		return err
	}
	return <-errc
}
