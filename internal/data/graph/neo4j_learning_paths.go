package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/yungbote/neurobridge-insights/internal/modules/insights"
	"github.com/yungbote/neurobridge-insights/internal/pkg/logger"
	"github.com/yungbote/neurobridge-insights/internal/platform/neo4jdb"
)

type learningPathRows struct {
	paths []map[string]any
	steps []map[string]any
	reqs  []map[string]any
}

func pathID(userID uuid.UUID, subject string) string {
	return fmt.Sprintf("%s:%s", userID.String(), subject)
}

func stepID(pID string, n int) string {
	return fmt.Sprintf("%s:%d", pID, n)
}

func buildLearningPathRows(userID uuid.UUID, paths []insights.LearningPath, syncedAt string) learningPathRows {
	out := learningPathRows{}
	for _, p := range paths {
		pid := pathID(userID, p.Subject)
		out.paths = append(out.paths, map[string]any{
			"user_id":      userID.String(),
			"path_id":      pid,
			"subject":      p.Subject,
			"difficulty":   string(p.Difficulty),
			"mastery":      p.AverageMastery,
			"current_step": int64(p.CurrentStep),
			"est_days":     int64(p.EstimatedCompletionDays),
			"step_count":   int64(len(p.Steps)),
			"synced_at":    syncedAt,
		})
		for _, s := range p.Steps {
			sid := stepID(pid, s.StepNumber)
			out.steps = append(out.steps, map[string]any{
				"path_id":       pid,
				"step_id":       sid,
				"step_number":   int64(s.StepNumber),
				"title":         s.Title,
				"resource_type": string(s.ResourceType),
				"minutes":       int64(s.EstimatedTimeMinutes),
				"completed":     s.Completed,
			})
			for _, req := range s.Prerequisites {
				out.reqs = append(out.reqs, map[string]any{
					"step_id": sid,
					"req_id":  stepID(pid, req),
				})
			}
		}
	}
	return out
}

// UpsertLearningPaths mirrors the user's current learning paths as
// (:User)-[:FOLLOWS]->(:LearningPath)-[:HAS_STEP]->(:PathStep)-[:REQUIRES]->(:PathStep).
// Steps beyond a path's current length are removed.
func UpsertLearningPaths(ctx context.Context, client *neo4jdb.Client, log *logger.Logger, userID uuid.UUID, paths []insights.LearningPath) error {
	if client == nil || client.Driver == nil {
		return nil
	}
	if userID == uuid.Nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	rows := buildLearningPathRows(userID, paths, now)

	session := client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: client.Database,
	})
	defer session.Close(ctx)

	// Best-effort schema init.
	for _, stmt := range []string{
		`CREATE CONSTRAINT user_id_unique IF NOT EXISTS FOR (u:User) REQUIRE u.id IS UNIQUE`,
		`CREATE CONSTRAINT learning_path_id_unique IF NOT EXISTS FOR (p:LearningPath) REQUIRE p.id IS UNIQUE`,
		`CREATE CONSTRAINT path_step_id_unique IF NOT EXISTS FOR (s:PathStep) REQUIRE s.id IS UNIQUE`,
	} {
		if res, err := session.Run(ctx, stmt, nil); err != nil {
			if log != nil {
				log.Warn("neo4j schema init failed (continuing)", "error", err)
			}
		} else {
			_, _ = res.Consume(ctx)
		}
	}

	run := func(tx neo4j.ManagedTransaction, cypher string, params map[string]any) error {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return err
		}
		_, err = res.Consume(ctx)
		return err
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if err := run(tx, `
MERGE (u:User {id: $user_id})
SET u.insights_synced_at = $synced_at
`, map[string]any{"user_id": userID.String(), "synced_at": now}); err != nil {
			return nil, err
		}
		if len(rows.paths) == 0 {
			return nil, nil
		}
		if err := run(tx, `
UNWIND $rows AS r
MERGE (u:User {id: r.user_id})
MERGE (p:LearningPath {id: r.path_id})
SET p.subject = r.subject,
    p.difficulty = r.difficulty,
    p.average_mastery = r.mastery,
    p.current_step = r.current_step,
    p.estimated_completion_days = r.est_days,
    p.synced_at = r.synced_at
MERGE (u)-[:FOLLOWS]->(p)
WITH p, r
OPTIONAL MATCH (p)-[:HAS_STEP]->(old:PathStep)
WHERE old.step_number > r.step_count
DETACH DELETE old
`, map[string]any{"rows": rows.paths}); err != nil {
			return nil, err
		}
		if err := run(tx, `
UNWIND $rows AS r
MATCH (p:LearningPath {id: r.path_id})
MERGE (s:PathStep {id: r.step_id})
SET s.step_number = r.step_number,
    s.title = r.title,
    s.resource_type = r.resource_type,
    s.estimated_minutes = r.minutes,
    s.completed = r.completed
MERGE (p)-[:HAS_STEP]->(s)
`, map[string]any{"rows": rows.steps}); err != nil {
			return nil, err
		}
		if len(rows.reqs) == 0 {
			return nil, nil
		}
		if err := run(tx, `
UNWIND $rows AS r
MATCH (s:PathStep {id: r.step_id})
MATCH (q:PathStep {id: r.req_id})
MERGE (s)-[:REQUIRES]->(q)
`, map[string]any{"rows": rows.reqs}); err != nil {
			return nil, err
		}
		return nil, nil
	})
	return err
}
