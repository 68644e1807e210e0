package domain

// Movement kinds.
const (
	TipoPrestamo = "PRESTAMO"
	TipoAbono    = "ABONO"
)

// MovimientoPendiente is a loan or payment recorded through chat that has not
// yet been written onto the client's physical envelope.
type MovimientoPendiente struct {
	ID            int       `json:"id"`
	ClienteID     int       `json:"cliente_id"`
	Tipo          string    `json:"tipo"` // "PRESTAMO" or "ABONO"
	Monto         Amount    `json:"monto"`
	Notas         string    `json:"notas,omitempty"`
	Procesado     bool      `json:"procesado"`
	CreatedAt     Timestamp `json:"created_at"`
	ClienteNombre string    `json:"cliente_nombre"`
}

// PendingTotals sums loans and payments across movements.
func PendingTotals(movs []MovimientoPendiente) (prestamos, abonos Amount) {
	for _, m := range movs {
		switch m.Tipo {
		case TipoPrestamo:
			prestamos = prestamos.Add(m.Monto)
		case TipoAbono:
			abonos = abonos.Add(m.Monto)
		}
	}
	return prestamos, abonos
}

// MovimientoDetalle is one movement inside a ClientePendiente.
type MovimientoDetalle struct {
	ID    int       `json:"id"`
	Tipo  string    `json:"tipo"`
	Monto Amount    `json:"monto"`
	Notas string    `json:"notas,omitempty"`
	Fecha Timestamp `json:"fecha"`
}

// ClientePendiente groups a client's unprocessed movements with their totals,
// as returned by GET /sobres/pendientes.
type ClientePendiente struct {
	ClienteID          int                 `json:"cliente_id"`
	Nombre             string              `json:"nombre"`
	ImagenSobreURL     string              `json:"imagen_sobre_url,omitempty"`
	CantidadPendientes int                 `json:"cantidad_pendientes"`
	TotalPrestamos     Amount              `json:"total_prestamos"`
	TotalAbonos        Amount              `json:"total_abonos"`
	Movimientos        []MovimientoDetalle `json:"movimientos"`
}
