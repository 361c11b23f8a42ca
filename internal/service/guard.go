package service

import (
	"context"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/util"
)

// RequireRole 校验调用者角色，管理员视为拥有全部角色
func RequireRole(actor *model.User, roles ...model.UserRole) error {
	if actor == nil {
		return util.ErrUnauthenticated
	}
	if actor.Role == model.Admin {
		return nil
	}
	for _, role := range roles {
		if actor.Role == role {
			return nil
		}
	}
	return util.Forbiddenf("role %s is not allowed", actor.Role)
}

// RequireOwnerOrAdmin 仅作者本人或管理员可修改
func RequireOwnerOrAdmin(actor *model.User, ownerID uint) error {
	if actor == nil {
		return util.ErrUnauthenticated
	}
	if actor.Role == model.Admin || actor.ID == ownerID {
		return nil
	}
	return util.Forbiddenf("only the author or an admin may modify this")
}

// requireModuleOwner 模块写操作需要 Contributor 且为所属路径的作者（管理员除外）
func requireModuleOwner(ctx context.Context, paths *repository.LearningPathRepository, actor *model.User, moduleID uint) (*model.Module, error) {
	if err := RequireRole(actor, model.Contributor); err != nil {
		return nil, err
	}
	module, err := paths.FindModuleByID(ctx, moduleID)
	if err != nil {
		return nil, util.NotFoundOr(err, "module")
	}
	path, err := paths.FindByID(ctx, module.LearningPathID)
	if err != nil {
		return nil, util.NotFoundOr(err, "learning path")
	}
	if err := RequireOwnerOrAdmin(actor, path.ContributorID); err != nil {
		return nil, err
	}
	return module, nil
}
