package utils

type ResponseData struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Results any    `json:"results,omitempty"`
}

// PanicIfNeeded hands the error to the recovery middleware, which renders it
// with the status and code of a pkg/error type when available.
func PanicIfNeeded(err any) {
	if err != nil {
		panic(err)
	}
}
