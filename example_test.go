package servicewatcher_test

import (
	"fmt"

	servicewatcher "github.com/Swind/service-watcher"
	"github.com/Swind/service-watcher/watcher"
)

// ExampleRunService shows an idle host launching a copy right away.
func ExampleRunService() {
	flag := &watcher.AtomicRunningFlag{}
	launcher := servicewatcher.LauncherFunc(func(desc servicewatcher.Descriptor) error {
		fmt.Println("launch", desc.Name)
		return nil
	})

	if err := servicewatcher.InitGlobal(launcher, flag, nil); err != nil {
		fmt.Println(err)
		return
	}
	defer servicewatcher.ShutdownGlobal()

	servicewatcher.RunService(servicewatcher.NewDescriptor("copy-photos", nil))

	// Output:
	// launch copy-photos
}
