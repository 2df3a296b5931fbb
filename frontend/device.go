package frontend

import "fmt"

// Path returns the device node of a frontend.
func Path(adapter, frontend int) string {
	return fmt.Sprintf("/dev/dvb/adapter%d/frontend%d", adapter, frontend)
}
