package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"fundflow/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const gatewayColumns = `id, name, provider, direction, base_url, credentials_enc, threshold_limit, methods,
		is_default, enabled, created_at, updated_at`

// GatewayRepo implements ports.GatewayRepository.
type GatewayRepo struct {
	pool Pool
}

// NewGatewayRepo creates a new GatewayRepo.
func NewGatewayRepo(pool Pool) *GatewayRepo {
	return &GatewayRepo{pool: pool}
}

// Create inserts a gateway config. CredentialsEnc must already be encrypted.
func (r *GatewayRepo) Create(ctx context.Context, g *domain.GatewayConfig) error {
	methods, err := json.Marshal(g.Methods)
	if err != nil {
		return fmt.Errorf("marshal gateway methods: %w", err)
	}
	query := `INSERT INTO gateways (` + gatewayColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err = r.pool.Exec(ctx, query,
		g.ID, g.Name, g.Provider, g.Direction, g.BaseURL, g.CredentialsEnc, g.ThresholdLimit, methods,
		g.IsDefault, g.Enabled, g.CreatedAt, g.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert gateway: %w", err)
	}
	return nil
}

func (r *GatewayRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.GatewayConfig, error) {
	query := `SELECT ` + gatewayColumns + ` FROM gateways WHERE id = $1`
	return scanGateway(r.pool.QueryRow(ctx, query, id))
}

// GetDefault returns the enabled default gateway for direction, preferring a dedicated one over BOTH.
func (r *GatewayRepo) GetDefault(ctx context.Context, direction domain.Direction) (*domain.GatewayConfig, error) {
	query := `SELECT ` + gatewayColumns + ` FROM gateways
		WHERE enabled AND is_default AND direction IN ($1, 'BOTH')
		ORDER BY (direction = $1) DESC, created_at ASC LIMIT 1`
	return scanGateway(r.pool.QueryRow(ctx, query, direction))
}

func (r *GatewayRepo) List(ctx context.Context) ([]domain.GatewayConfig, error) {
	query := `SELECT ` + gatewayColumns + ` FROM gateways ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list gateways: %w", err)
	}
	defer rows.Close()

	var out []domain.GatewayConfig
	for rows.Next() {
		g, err := scanGateway(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate gateway rows: %w", err)
	}
	return out, nil
}

func scanGateway(row pgx.Row) (*domain.GatewayConfig, error) {
	g := &domain.GatewayConfig{}
	var methods []byte
	err := row.Scan(
		&g.ID, &g.Name, &g.Provider, &g.Direction, &g.BaseURL, &g.CredentialsEnc, &g.ThresholdLimit, &methods,
		&g.IsDefault, &g.Enabled, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan gateway: %w", err)
	}
	if len(methods) > 0 {
		if err := json.Unmarshal(methods, &g.Methods); err != nil {
			return nil, fmt.Errorf("decode gateway methods: %w", err)
		}
	}
	return g, nil
}
