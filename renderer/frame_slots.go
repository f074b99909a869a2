package renderer

import "log"

// frameSlot is one of the frames that may be in flight at the same time. The fence guards reuse of the command
// buffer, the semaphore tells the GPU when the acquired image can be written.
type frameSlot struct {
	commandBuffer  CommandBuffer
	imageAvailable Semaphore
	inFlight       Fence
}

// createFrameSlots allocates count slots. Fences start signalled so the very first wait on each slot returns
// immediately. Either all slots are created or everything created so far is released again.
func createFrameSlots(device DeviceContext, count int) ([]frameSlot, error) {
	buffers, err := device.AllocateCommandBuffers(count)
	if err != nil {
		return nil, Mark(err, ErrResourceCreation, "allocate %d command buffers", count)
	}
	if len(buffers) != count {
		device.FreeCommandBuffers(buffers)
		return nil, Newf(ErrResourceCreation, "allocated %d command buffers, wanted %d", len(buffers), count)
	}

	slots := make([]frameSlot, 0, count)
	release := func() {
		destroyFrameSlots(device, slots)
		device.FreeCommandBuffers(buffers)
	}
	for i := 0; i < count; i++ {
		sem, err := device.CreateSemaphore()
		if err != nil {
			release()
			return nil, Mark(err, ErrResourceCreation, "create image available semaphore [%d]", i)
		}
		fence, err := device.CreateFence(true)
		if err != nil {
			sem.Destroy()
			release()
			return nil, Mark(err, ErrResourceCreation, "create in flight fence [%d]", i)
		}
		slots = append(slots, frameSlot{
			commandBuffer:  buffers[i],
			imageAvailable: sem,
			inFlight:       fence,
		})
	}
	log.Printf("Created %d frame slots", len(slots))
	return slots, nil
}

// destroyFrameSlots releases the sync objects of the slots. Command buffers go back to the pool separately.
func destroyFrameSlots(device DeviceContext, slots []frameSlot) {
	for i := range slots {
		slots[i].imageAvailable.Destroy()
		slots[i].inFlight.Destroy()
	}
}

// createSemaphores creates one semaphore per swapchain image, all or nothing.
func createSemaphores(device DeviceContext, count int) ([]Semaphore, error) {
	sems := make([]Semaphore, 0, count)
	for i := 0; i < count; i++ {
		s, err := device.CreateSemaphore()
		if err != nil {
			destroySemaphores(sems)
			return nil, Mark(err, ErrResourceCreation, "create render finished semaphore [%d]", i)
		}
		sems = append(sems, s)
	}
	return sems, nil
}

func destroySemaphores(sems []Semaphore) {
	for _, s := range sems {
		s.Destroy()
	}
}
