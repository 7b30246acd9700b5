// internal/advisor/repository/postgres.go
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	apperrors "ai-advisor/internal/common/errors"
	"ai-advisor/internal/common/logger"
	"ai-advisor/internal/models"
)

const (
	queryUserByEmail = `SELECT id, email, company_name, company_industry, company_scale, preferred_scenarios FROM users WHERE email = $1`
	queryInsertUser  = `INSERT INTO users (email, company_name, company_industry, company_scale, preferred_scenarios)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, email, company_name, company_industry, company_scale, preferred_scenarios`
	queryUpsertUser = `INSERT INTO users (email, company_name, company_industry, company_scale, preferred_scenarios)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO UPDATE SET
			company_name = EXCLUDED.company_name,
			company_industry = EXCLUDED.company_industry,
			company_scale = EXCLUDED.company_scale,
			preferred_scenarios = EXCLUDED.preferred_scenarios
		RETURNING id, email, company_name, company_industry, company_scale, preferred_scenarios`

	queryListModels = `SELECT id, COALESCE(name, ''), COALESCE(provider, ''), COALESCE(description, ''), business_scenarios, cost_input, cost_output
		FROM models ORDER BY updated_at DESC LIMIT $1`
	queryModelByID = `SELECT id, COALESCE(name, ''), COALESCE(provider, ''), COALESCE(description, ''), business_scenarios, cost_input, cost_output,
		COALESCE(api_url, ''), COALESCE(docs_url, ''), COALESCE(source_url, ''), COALESCE(release_date::text, '')
		FROM models WHERE id = $1`
	queryListArticles = `SELECT id, COALESCE(title, ''), COALESCE(summary, ''), COALESCE(source, ''), tags
		FROM articles ORDER BY created_at DESC LIMIT $1`
	queryArticleByID = `SELECT id, COALESCE(title, ''), COALESCE(summary, ''), COALESCE(content, ''), COALESCE(source, ''), COALESCE(url, ''), tags,
		COALESCE(published_at::text, '')
		FROM articles WHERE id = $1`

	queryFavorites       = `SELECT model_id, article_id FROM favorites WHERE user_id = $1 ORDER BY created_at DESC`
	queryAddFavorite     = `INSERT INTO favorites (user_id, model_id, article_id) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`
	queryRemoveModel     = `DELETE FROM favorites WHERE user_id = $1 AND model_id = $2`
	queryRemoveArticle   = `DELETE FROM favorites WHERE user_id = $1 AND article_id = $2`
	queryConversations   = `SELECT id, COALESCE(title, ''), updated_at FROM conversations WHERE user_id = $1 ORDER BY updated_at DESC LIMIT $2`
	queryAddConversation = `INSERT INTO conversations (user_id, title) VALUES ($1, $2) RETURNING id, COALESCE(title, ''), updated_at`
	queryAddMessage      = `INSERT INTO messages (conversation_id, role, content, agent_type) VALUES ($1, $2, $3, $4)`
	queryAddSolution     = `INSERT INTO solutions (user_id, conversation_id, title, content, pdf_url) VALUES ($1, $2, $3, $4, NULL)`
)

const conversationTimeLayout = "2006-01-02 15:04"

// PostgresRepository stores everything for the single profile identified
// by email.
type PostgresRepository struct {
	db     *sql.DB
	email  string
	logger logger.Logger
}

func NewPostgresRepository(db *sql.DB, email string, log logger.Logger) *PostgresRepository {
	return &PostgresRepository{
		db:     db,
		email:  email,
		logger: log.WithFields(map[string]interface{}{"component": "postgres-repository"}),
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (string, models.UserProfile, error) {
	var (
		id        string
		p         models.UserProfile
		name      sql.NullString
		industry  sql.NullString
		scale     sql.NullString
		scenarios stringArray
	)
	if err := row.Scan(&id, &p.Email, &name, &industry, &scale, &scenarios); err != nil {
		return "", models.UserProfile{}, err
	}
	p.CompanyName = name.String
	p.CompanyIndustry = industry.String
	p.CompanyScale = scale.String
	if len(scenarios) > 0 {
		p.PreferredScenarios = scenarios
	}
	return id, p, nil
}

// ensureUser returns the profile row, creating it with defaults on first use.
func (r *PostgresRepository) ensureUser(ctx context.Context) (string, models.UserProfile, error) {
	id, profile, err := scanUser(r.db.QueryRowContext(ctx, queryUserByEmail, r.email))
	if err == nil {
		return id, withDefaults(profile, r.email), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", models.UserProfile{}, apperrors.NewDatabaseQueryFailedError("select_user", err)
	}

	def := models.DefaultProfile(r.email)
	id, profile, err = scanUser(r.db.QueryRowContext(ctx, queryInsertUser,
		def.Email, def.CompanyName, def.CompanyIndustry, def.CompanyScale, stringArray(def.PreferredScenarios)))
	if err != nil {
		return "", models.UserProfile{}, apperrors.NewDatabaseQueryFailedError("insert_user", err)
	}
	r.logger.Info("user created", map[string]interface{}{"email": r.email})
	return id, withDefaults(profile, r.email), nil
}

func (r *PostgresRepository) GetProfile(ctx context.Context) (models.UserProfile, error) {
	_, profile, err := r.ensureUser(ctx)
	return profile, err
}

func (r *PostgresRepository) UpsertProfile(ctx context.Context, profile models.UserProfile) (models.UserProfile, error) {
	profile.Email = orDefault(profile.Email, r.email)
	_, saved, err := scanUser(r.db.QueryRowContext(ctx, queryUpsertUser,
		profile.Email, profile.CompanyName, profile.CompanyIndustry, profile.CompanyScale, stringArray(profile.PreferredScenarios)))
	if err != nil {
		return models.UserProfile{}, apperrors.NewDatabaseQueryFailedError("upsert_user", err)
	}
	return withDefaults(saved, r.email), nil
}

func scanModel(row rowScanner, extra ...interface{}) (models.CandidateModel, error) {
	var (
		m          models.CandidateModel
		scenarios  stringArray
		costInput  sql.NullFloat64
		costOutput sql.NullFloat64
	)
	dest := append([]interface{}{&m.ID, &m.Name, &m.Provider, &m.Description, &scenarios, &costInput, &costOutput}, extra...)
	if err := row.Scan(dest...); err != nil {
		return models.CandidateModel{}, err
	}
	m.Name = orDefault(m.Name, UnknownModelName)
	m.Provider = orDefault(m.Provider, UnknownProvider)
	m.BusinessScenarios = scenarios
	if m.BusinessScenarios == nil {
		m.BusinessScenarios = []string{}
	}
	if costInput.Valid {
		m.CostInput = models.Float(costInput.Float64)
	}
	if costOutput.Valid {
		m.CostOutput = models.Float(costOutput.Float64)
	}
	return m, nil
}

func (r *PostgresRepository) ListModels(ctx context.Context, limit int) ([]models.CandidateModel, error) {
	rows, err := r.db.QueryContext(ctx, queryListModels, normalizeLimit(limit))
	if err != nil {
		return nil, apperrors.NewDatabaseQueryFailedError("list_models", err)
	}
	defer rows.Close()

	out := []models.CandidateModel{}
	for rows.Next() {
		m, err := scanModel(rows)
		if err != nil {
			return nil, apperrors.NewDatabaseQueryFailedError("list_models", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseQueryFailedError("list_models", err)
	}
	return out, nil
}

func (r *PostgresRepository) GetModelByID(ctx context.Context, id string) (*models.ModelDetail, error) {
	var d models.ModelDetail
	m, err := scanModel(r.db.QueryRowContext(ctx, queryModelByID, id), &d.APIURL, &d.DocsURL, &d.SourceURL, &d.ReleaseDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewDatabaseQueryFailedError("get_model", err)
	}
	d.CandidateModel = m
	return &d, nil
}

func (r *PostgresRepository) ListArticles(ctx context.Context, limit int) ([]models.CandidateArticle, error) {
	rows, err := r.db.QueryContext(ctx, queryListArticles, normalizeLimit(limit))
	if err != nil {
		return nil, apperrors.NewDatabaseQueryFailedError("list_articles", err)
	}
	defer rows.Close()

	out := []models.CandidateArticle{}
	for rows.Next() {
		var (
			a    models.CandidateArticle
			tags stringArray
		)
		if err := rows.Scan(&a.ID, &a.Title, &a.Summary, &a.Source, &tags); err != nil {
			return nil, apperrors.NewDatabaseQueryFailedError("list_articles", err)
		}
		a.Tags = orEmpty(tags)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseQueryFailedError("list_articles", err)
	}
	return out, nil
}

func (r *PostgresRepository) GetArticleByID(ctx context.Context, id string) (*models.ArticleDetail, error) {
	var (
		d    models.ArticleDetail
		tags stringArray
	)
	err := r.db.QueryRowContext(ctx, queryArticleByID, id).
		Scan(&d.ID, &d.Title, &d.Summary, &d.Content, &d.Source, &d.URL, &tags, &d.PublishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewDatabaseQueryFailedError("get_article", err)
	}
	d.Tags = orEmpty(tags)
	return &d, nil
}

func (r *PostgresRepository) GetFavorites(ctx context.Context) (models.Favorites, error) {
	userID, _, err := r.ensureUser(ctx)
	if err != nil {
		return models.Favorites{}, err
	}
	return r.favorites(ctx, userID)
}

func (r *PostgresRepository) favorites(ctx context.Context, userID string) (models.Favorites, error) {
	rows, err := r.db.QueryContext(ctx, queryFavorites, userID)
	if err != nil {
		return models.Favorites{}, apperrors.NewDatabaseQueryFailedError("list_favorites", err)
	}
	defer rows.Close()

	fav := models.Favorites{ModelIDs: []string{}, ArticleIDs: []string{}}
	for rows.Next() {
		var modelID, articleID sql.NullString
		if err := rows.Scan(&modelID, &articleID); err != nil {
			return models.Favorites{}, apperrors.NewDatabaseQueryFailedError("list_favorites", err)
		}
		if modelID.Valid {
			fav.ModelIDs = append(fav.ModelIDs, modelID.String)
		}
		if articleID.Valid {
			fav.ArticleIDs = append(fav.ArticleIDs, articleID.String)
		}
	}
	if err := rows.Err(); err != nil {
		return models.Favorites{}, apperrors.NewDatabaseQueryFailedError("list_favorites", err)
	}
	return fav, nil
}

func (r *PostgresRepository) AddFavorite(ctx context.Context, target models.FavoriteTarget) (models.Favorites, error) {
	userID, _, err := r.ensureUser(ctx)
	if err != nil {
		return models.Favorites{}, err
	}
	if _, err := r.db.ExecContext(ctx, queryAddFavorite, userID, nullable(target.ModelID), nullable(target.ArticleID)); err != nil {
		return models.Favorites{}, apperrors.NewDatabaseQueryFailedError("add_favorite", err)
	}
	return r.favorites(ctx, userID)
}

func (r *PostgresRepository) RemoveFavorite(ctx context.Context, target models.FavoriteTarget) (models.Favorites, error) {
	userID, _, err := r.ensureUser(ctx)
	if err != nil {
		return models.Favorites{}, err
	}
	query, id := queryRemoveModel, target.ModelID
	if id == "" {
		query, id = queryRemoveArticle, target.ArticleID
	}
	if _, err := r.db.ExecContext(ctx, query, userID, id); err != nil {
		return models.Favorites{}, apperrors.NewDatabaseQueryFailedError("remove_favorite", err)
	}
	return r.favorites(ctx, userID)
}

func scanConversation(row rowScanner) (models.Conversation, error) {
	var (
		c       models.Conversation
		updated time.Time
	)
	if err := row.Scan(&c.ID, &c.Title, &updated); err != nil {
		return models.Conversation{}, err
	}
	c.Title = orDefault(c.Title, DefaultConversationTitle)
	c.UpdatedAt = updated.Local().Format(conversationTimeLayout)
	return c, nil
}

func (r *PostgresRepository) GetConversations(ctx context.Context) ([]models.Conversation, error) {
	userID, _, err := r.ensureUser(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, queryConversations, userID, ConversationLimit)
	if err != nil {
		return nil, apperrors.NewDatabaseQueryFailedError("list_conversations", err)
	}
	defer rows.Close()

	out := []models.Conversation{}
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, apperrors.NewDatabaseQueryFailedError("list_conversations", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseQueryFailedError("list_conversations", err)
	}
	return out, nil
}

func (r *PostgresRepository) AppendConversation(ctx context.Context, title string) (models.Conversation, error) {
	userID, _, err := r.ensureUser(ctx)
	if err != nil {
		return models.Conversation{}, err
	}
	c, err := scanConversation(r.db.QueryRowContext(ctx, queryAddConversation, userID, orDefault(title, DefaultConversationTitle)))
	if err != nil {
		return models.Conversation{}, apperrors.NewDatabaseQueryFailedError("insert_conversation", err)
	}
	return c, nil
}

func (r *PostgresRepository) PersistMessage(ctx context.Context, msg models.Message) error {
	if _, err := r.db.ExecContext(ctx, queryAddMessage, msg.ConversationID, msg.Role, msg.Content, nullable(msg.AgentType)); err != nil {
		return apperrors.NewDatabaseQueryFailedError("insert_message", err)
	}
	return nil
}

func (r *PostgresRepository) PersistSolution(ctx context.Context, record models.SolutionRecord) error {
	userID, _, err := r.ensureUser(ctx)
	if err != nil {
		return err
	}
	content, err := json.Marshal(record.Content)
	if err != nil {
		return apperrors.NewDatabaseQueryFailedError("insert_solution", err)
	}
	if _, err := r.db.ExecContext(ctx, queryAddSolution, userID, record.ConversationID, record.Title, content); err != nil {
		return apperrors.NewDatabaseQueryFailedError("insert_solution", err)
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func orEmpty(tags stringArray) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
