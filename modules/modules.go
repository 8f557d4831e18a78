package modules

import (
	"github.com/talentpipe/crm/modules/core"
	"github.com/talentpipe/crm/modules/crm"
	"github.com/talentpipe/crm/pkg/application"
)

var BuiltInModules = []application.Module{
	core.NewModule(),
	crm.NewModule(),
}

func Load(app application.Application, externalModules ...application.Module) error {
	for _, module := range externalModules {
		if err := module.Register(app); err != nil {
			return err
		}
	}
	return nil
}
