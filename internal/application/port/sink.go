package port

import "nvcompare/internal/domain/model"

// Sink receives every published view snapshot.
type Sink interface {
	Publish(snap model.ViewSnapshot) error
}
