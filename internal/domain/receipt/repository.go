package receipt

import "context"

type Repository interface {
	Insert(ctx context.Context, r *Receipt) error
	Get(ctx context.Context, id string) (*Receipt, error)
	List(ctx context.Context) ([]*Receipt, error)
}
