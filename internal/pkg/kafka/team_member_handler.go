package kafka

import (
	"Volunteer/internal/model"
	"Volunteer/internal/pkg/util"
	"Volunteer/internal/service"
	"context"
	"errors"
	log "log/slog"

	"github.com/IBM/sarama"
)

// MemberSyncer 团队成员变更后同步群聊成员
type MemberSyncer interface {
	EnsureEventMember(ctx context.Context, eventID, userID uint64) error
}

// TeamMemberHandler 消费 event_team_members 的 binlog，录用即加入活动群聊
type TeamMemberHandler struct {
	syncer MemberSyncer
}

func NewTeamMemberHandler(syncer MemberSyncer) *TeamMemberHandler {
	return &TeamMemberHandler{syncer: syncer}
}

func (s *TeamMemberHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("team member consumer setup")
	return nil
}

func (s *TeamMemberHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("team member consumer cleanup")
	return nil
}

func (s *TeamMemberHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	if err := pullMessageBatch(session, claim, s.logic); err != nil {
		log.Error("topic-team-member process batch error", "err", err)
		return err
	}
	return nil
}

// logic 脏数据直接跳过，只有同步失败才返回错误触发重试
func (s *TeamMemberHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	canalMsg, err := ToCanalMessage(msg, model.EventTeamMember{}.TableName())
	if err != nil {
		log.Debug("skip canal message", "offset", msg.Offset, "err", err)
		return nil
	}
	if canalMsg.Type != INSERT {
		return nil
	}

	for i := range canalMsg.Data {
		eventID, err1 := util.StrToUint64(canalMsg.column(i, "event_id"))
		userID, err2 := util.StrToUint64(canalMsg.column(i, "user_id"))
		if err1 != nil || err2 != nil || eventID == 0 || userID == 0 {
			log.Warn("invalid team member row", "row", canalMsg.Data[i])
			continue
		}
		err = s.syncer.EnsureEventMember(ctx, eventID, userID)
		if errors.Is(err, service.ErrEventNotFound) {
			log.Warn("team member of unknown event", "eventID", eventID, "userID", userID)
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}
