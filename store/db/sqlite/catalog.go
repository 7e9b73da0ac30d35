package sqlite

import (
	"context"

	"github.com/inaratravel/concierge/store"
)

func (d *DB) ListPackages(ctx context.Context) ([]*store.TravelPackage, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, name, price, duration_days, airline, features
		FROM travel_package
		WHERE active = 1
		ORDER BY price ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []*store.TravelPackage{}
	for rows.Next() {
		p := &store.TravelPackage{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.DurationDays, &p.Airline, &p.Features); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
