package domain

// ChatResponse is the assistant's reply to a chat message.
type ChatResponse struct {
	Respuesta string `json:"respuesta"`
	ImagenURL string `json:"imagen_url,omitempty"`
	ClienteID *int   `json:"cliente_id,omitempty"`
	Accion    string `json:"accion,omitempty"` // buscar_cliente, registrar_prestamo, registrar_abono, listar_pendientes
}
