package models

type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type WasteTypesResponse struct {
	WasteTypes []WasteTypeInfo `json:"wasteTypes"`
}
