package api

// ProgramRequest carries hex encoded bytecode, e.g. {"code":"7F000000037F0000000401F3"}
type ProgramRequest struct {
	Code string `json:"code"`
}

type DisasmResponse struct {
	Listing string `json:"listing"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
