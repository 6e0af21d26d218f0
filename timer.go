package vl53l0x

import "time"

// TimeoutOccurred reports whether a timeout has occurred since the last call
func (v *VL53L0X) TimeoutOccurred() bool {
	tmp := v.didTimeout
	v.didTimeout = false
	return tmp
}

// startTimeout starts the timeout counter
func (v *VL53L0X) startTimeout() {
	v.timeoutStart = v.now()
}

// checkTimeoutExpired checks if timeout has expired
func (v *VL53L0X) checkTimeoutExpired(timeout time.Duration) bool {
	return v.now().Sub(v.timeoutStart) > timeout
}

// poll calls ready every poll interval until it reports true, it returns an
// error or the timeout expires.  The timeout is reported as ErrTimeout.
func (v *VL53L0X) poll(timeout time.Duration, ready func() (bool, error)) error {

	v.startTimeout()

	for {
		ok, err := ready()

		if err != nil {
			return err
		}

		if ok {
			return nil
		}

		if v.checkTimeoutExpired(timeout) {
			v.didTimeout = true
			return ErrTimeout
		}

		v.sleep(v.pollInterval)
	}
}
