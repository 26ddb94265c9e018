package hostfunc

// MDB call types

// MDBResponse is the result of an mdb_<op> host function. Binding failures
// are reported in Errno and Error, not as host function errors.
type MDBResponse struct {
	Result any            `json:"result"`
	Errno  int            `json:"errno"`
	Error  string         `json:"error,omitempty"`
	Out    map[string]any `json:"out,omitempty"`
}

// MDBStatus is the result of mdb_errno.
type MDBStatus struct {
	Errno int    `json:"errno"`
	Error string `json:"error"`
}
