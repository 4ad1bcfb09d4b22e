package store

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore is the persistence gateway: one method per entity/operation
// pair, each issuing a single statement. Ids are assigned by the database.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	var user User
	err := s.db.QueryRowContext(ctx, `SELECT id, email FROM app_user WHERE email=$1`, email).Scan(&user.ID, &user.Email)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, userID int64) (User, error) {
	var user User
	err := s.db.QueryRowContext(ctx, `SELECT id, email FROM app_user WHERE id=$1`, userID).Scan(&user.ID, &user.Email)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *PostgresStore) InsertUser(ctx context.Context, email string) (User, error) {
	var user User
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO app_user (email)
		VALUES ($1)
		RETURNING id, email
	`, email).Scan(&user.ID, &user.Email)
	if err != nil {
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

func (s *PostgresStore) GetProject(ctx context.Context, projectID int64) (Project, error) {
	var item Project
	err := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, title, priority
		FROM project
		WHERE id=$1
	`, projectID).Scan(&item.ID, &item.OwnerID, &item.Title, &item.Priority)
	if err != nil {
		return Project{}, err
	}
	return item, nil
}

func (s *PostgresStore) ListProjectsByOwner(ctx context.Context, ownerID int64) ([]Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, title, priority
		FROM project
		WHERE owner_id=$1
		ORDER BY id
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	items := make([]Project, 0)
	for rows.Next() {
		var item Project
		if err := rows.Scan(&item.ID, &item.OwnerID, &item.Title, &item.Priority); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) InsertProject(ctx context.Context, item NewProject) (Project, error) {
	var created Project
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO project (owner_id, title)
		VALUES ($1, $2)
		RETURNING id, owner_id, title, priority
	`, item.OwnerID, item.Title).Scan(&created.ID, &created.OwnerID, &created.Title, &created.Priority)
	if err != nil {
		return Project{}, fmt.Errorf("insert project: %w", err)
	}
	return created, nil
}

// DeleteProject removes the row and returns it. sql.ErrNoRows when absent.
func (s *PostgresStore) DeleteProject(ctx context.Context, projectID int64) (Project, error) {
	var deleted Project
	err := s.db.QueryRowContext(ctx, `
		DELETE FROM project
		WHERE id=$1
		RETURNING id, owner_id, title, priority
	`, projectID).Scan(&deleted.ID, &deleted.OwnerID, &deleted.Title, &deleted.Priority)
	if err != nil {
		return Project{}, err
	}
	return deleted, nil
}

func (s *PostgresStore) UpdateProjectTitle(ctx context.Context, patch PatchProject) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE project
		SET title=$2
		WHERE id=$1
	`, patch.ID, patch.Title)
	if err != nil {
		return fmt.Errorf("update project title: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetTask(ctx context.Context, taskID int64) (Task, error) {
	var item Task
	err := s.db.QueryRowContext(ctx, `
		SELECT id, project_id, task_list_id, title, completed
		FROM task
		WHERE id=$1
	`, taskID).Scan(&item.ID, &item.ProjectID, &item.TaskListID, &item.Title, &item.Completed)
	if err != nil {
		return Task{}, err
	}
	return item, nil
}

// ListTasksForOwner scopes task listing to the caller in the same statement:
// joining on project keeps a foreign projectId from leaking another user's
// tasks even before the handler-level checks run.
func (s *PostgresStore) ListTasksForOwner(ctx context.Context, ownerID, projectID int64) ([]Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.project_id, t.task_list_id, t.title, t.completed
		FROM task t
		INNER JOIN project p ON p.id = t.project_id
		WHERE p.owner_id=$1 AND t.project_id=$2
		ORDER BY t.id
	`, ownerID, projectID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	items := make([]Task, 0)
	for rows.Next() {
		var item Task
		if err := rows.Scan(&item.ID, &item.ProjectID, &item.TaskListID, &item.Title, &item.Completed); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) InsertTask(ctx context.Context, item NewTask) (Task, error) {
	var created Task
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO task (project_id, task_list_id, title)
		VALUES ($1, $2, $3)
		RETURNING id, project_id, task_list_id, title, completed
	`, item.ProjectID, item.TaskListID, item.Title).Scan(&created.ID, &created.ProjectID, &created.TaskListID, &created.Title, &created.Completed)
	if err != nil {
		return Task{}, fmt.Errorf("insert task: %w", err)
	}
	return created, nil
}

// DeleteTask removes the row and returns it. sql.ErrNoRows when absent.
func (s *PostgresStore) DeleteTask(ctx context.Context, taskID int64) (Task, error) {
	var deleted Task
	err := s.db.QueryRowContext(ctx, `
		DELETE FROM task
		WHERE id=$1
		RETURNING id, project_id, task_list_id, title, completed
	`, taskID).Scan(&deleted.ID, &deleted.ProjectID, &deleted.TaskListID, &deleted.Title, &deleted.Completed)
	if err != nil {
		return Task{}, err
	}
	return deleted, nil
}
