package badger

import (
	"github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"

	"github.com/jaiswar203/CreatorEvolve-Server/internal/common"
	"github.com/jaiswar203/CreatorEvolve-Server/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db       *BadgerDB
	audio    interfaces.AudioStorage
	video    interfaces.VideoStorage
	dubbing  interfaces.DubbingStorage
	enhance  interfaces.EnhanceStorage
	diagnose interfaces.DiagnoseStorage
	inquiry  interfaces.InquiryStorage
	logger   arbor.ILogger
}

// NewManager creates a new Badger storage manager
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (*Manager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:       db,
		audio:    NewAudioStorage(db, logger),
		video:    NewVideoStorage(db, logger),
		dubbing:  NewDubbingStorage(db, logger),
		enhance:  NewEnhanceStorage(db, logger),
		diagnose: NewDiagnoseStorage(db, logger),
		inquiry:  NewInquiryStorage(db, logger),
		logger:   logger,
	}

	logger.Info().Msg("Badger storage manager initialized")

	return manager, nil
}

// AudioStorage returns the Audio storage interface
func (m *Manager) AudioStorage() interfaces.AudioStorage {
	return m.audio
}

// VideoStorage returns the Video storage interface
func (m *Manager) VideoStorage() interfaces.VideoStorage {
	return m.video
}

// DubbingStorage returns the Dubbing job storage interface
func (m *Manager) DubbingStorage() interfaces.DubbingStorage {
	return m.dubbing
}

// EnhanceStorage returns the Enhance job storage interface
func (m *Manager) EnhanceStorage() interfaces.EnhanceStorage {
	return m.enhance
}

// DiagnoseStorage returns the Diagnose job storage interface
func (m *Manager) DiagnoseStorage() interfaces.DiagnoseStorage {
	return m.diagnose
}

// InquiryStorage returns the Inquiry storage interface
func (m *Manager) InquiryStorage() interfaces.InquiryStorage {
	return m.inquiry
}

// Badger exposes the raw badger database for components that bypass
// badgerhold encoding, such as the task queue.
func (m *Manager) Badger() *badger.DB {
	return m.db.Store().Badger()
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
