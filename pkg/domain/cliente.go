package domain

// Cliente is a borrower with a physical envelope on file.
type Cliente struct {
	ID             int       `json:"id"`
	Nombre         string    `json:"nombre"`
	Cedula         string    `json:"cedula,omitempty"`
	Telefono       string    `json:"telefono,omitempty"`
	Direccion      string    `json:"direccion,omitempty"`
	ImagenSobreURL string    `json:"imagen_sobre_url,omitempty"`
	Notas          string    `json:"notas,omitempty"`
	CreatedAt      Timestamp `json:"created_at"`
}

// ClienteUpdate is a partial update; nil fields are left untouched by the backend.
type ClienteUpdate struct {
	Nombre    *string `json:"nombre,omitempty"`
	Cedula    *string `json:"cedula,omitempty"`
	Telefono  *string `json:"telefono,omitempty"`
	Direccion *string `json:"direccion,omitempty"`
	Notas     *string `json:"notas,omitempty"`
}
